package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PackageFile is the npm package descriptor that may point at manifests
const PackageFile = "package.json"

// packageDescriptor holds the fields of package.json that reference manifests.
// "web-types" is either a single path or a list of paths.
type packageDescriptor struct {
	WebTypes yaml.Node `yaml:"web-types"`
}

// PackageReferences returns the manifest files a package.json declares
// through its "web-types" field, resolved against the package directory.
// A package without the field yields no references.
func PackageReferences(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package file: %w", err)
	}

	var pkg packageDescriptor
	if err := yaml.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}

	var refs []string
	switch pkg.WebTypes.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		refs = []string{pkg.WebTypes.Value}
	case yaml.SequenceNode:
		if err := pkg.WebTypes.Decode(&refs); err != nil {
			return nil, fmt.Errorf("%w: %s: web-types: %v", ErrInvalidManifest, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s: web-types must be a path or a list of paths", ErrInvalidManifest, path)
	}

	dir := filepath.Dir(path)
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if !filepath.IsAbs(ref) {
			ref = filepath.Join(dir, ref)
		}
		out = append(out, filepath.Clean(ref))
	}
	return out, nil
}
