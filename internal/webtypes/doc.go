// Package webtypes turns web-types manifests into queryable symbols.
//
// Decode reads a manifest (JSON or YAML) into immutable Contributions. Each
// contribution is bound to its origin and root container by Wrap, which picks
// one of a closed set of variants:
//
//   - VariantPattern: the contribution declares a name pattern
//   - VariantLegacyVueDirective: a "v-" attribute of a Vue library, exposed as a directive
//   - VariantLegacyVueComponent: a legacy Vue "tags" entry, exposed as a component
//   - VariantStatic: everything else
//
// A Wrapper bound to a Registry becomes a Symbol. Attributes a contribution does
// not declare are inherited from the symbols named by its "extends" reference;
// that chain is resolved lazily, once per symbol, and never revisits a
// contribution.
//
// Symbols also act as scopes: NestedSymbols looks a name up among the
// contributions declared inside the symbol and inside the symbols it extends.
package webtypes
