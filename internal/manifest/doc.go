// Package manifest reads web-types manifest files from disk.
//
// # Basic Usage
//
//	p := manifest.New()
//	result, err := p.ParseFile("/path/to/lib.web-types.json")
//	if err != nil {
//	    return err // I/O failure
//	}
//	if result.HasErrors() {
//	    return result.Err() // not a usable manifest
//	}
//	for _, w := range result.Warnings {
//	    log.Warn().Str("file", w.File).Msg(w.Message)
//	}
//
// ParseFile hashes the raw content with SHA-256 so callers can skip files that
// did not change since they were last loaded.
//
// # Validation
//
// A manifest that decodes is usable even when parts of it are not. Those
// parts are reported as warnings:
//   - a library version that is not a semantic version
//   - name patterns that do not compile
//   - "extends" references that are not valid paths
//   - contributions with neither name nor pattern
//
// With Parser.Strict set, warnings are reported as errors instead.
//
// # Discovery
//
// Match recognises manifest file names (web-types.json, *.web-types.json,
// *.web-types.yaml). npm packages point at their manifests through the
// "web-types" field of package.json, which PackageReferences resolves.
package manifest
