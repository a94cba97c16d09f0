// Package names converts symbol names between the textual forms used to store,
// query and complete them.
//
// Rules are supplied in layers, most specific first. For every
// (framework, namespace, kind) key the first layer that defines a rule wins:
//
//	rules := names.FromConventions("vue", names.ConventionTables{
//	    Canonical: map[types.QualifiedKind][]names.Convention{
//	        {Namespace: types.NamespaceHTML, Kind: types.KindProps}: {names.ConventionKebabCase},
//	    },
//	})
//	provider := names.NewProvider("vue", names.DefaultFrameworks(), []names.Rules{rules})
//	provider.Names(types.NamespaceHTML, types.KindProps, "fooBar", types.TargetStorageKey) // [foo-bar]
//
// Without a rule, names in the js namespace are kept verbatim and all other
// names are lowercased.
package names
