// Package manifest turns ModuleManifest documents into registry modules and
// resolver wire maps back into CapabilityBinding documents.
package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/serializer"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"

	binderyv1alpha1 "github.com/bayleafwalker/bindery/api/v1alpha1"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(binderyv1alpha1.AddToScheme(scheme))
}

// Scheme returns the scheme the manifest types are registered with.
func Scheme() *runtime.Scheme { return scheme }

var manifestExtensions = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// IsManifestFile reports whether path has a manifest file extension.
func IsManifestFile(path string) bool {
	return manifestExtensions[filepath.Ext(path)]
}

// Load reads every manifest in paths. Directories are walked recursively and
// only .yaml, .yml and .json files inside them are read.
func Load(paths ...string) ([]binderyv1alpha1.ModuleManifest, error) {
	var out []binderyv1alpha1.ModuleManifest
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || (path != root && !IsManifestFile(path)) {
				return nil
			}
			items, err := loadFile(path)
			if err != nil {
				return err
			}
			out = append(out, items...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func loadFile(path string) ([]binderyv1alpha1.ModuleManifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode reads a stream of YAML or JSON documents separated by "---".
// Each document must be a ModuleManifest or a ModuleManifestList.
func Decode(r io.Reader, source string) ([]binderyv1alpha1.ModuleManifest, error) {
	decoder := serializer.NewCodecFactory(scheme).UniversalDeserializer()
	reader := utilyaml.NewYAMLReader(bufio.NewReader(r))

	var out []binderyv1alpha1.ModuleManifest
	for doc := 1; ; doc++ {
		raw, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read document %d: %w", source, doc, err)
		}
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}

		obj, gvk, err := decoder.Decode(raw, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: decode document %d: %w", source, doc, err)
		}
		switch o := obj.(type) {
		case *binderyv1alpha1.ModuleManifest:
			out = append(out, *o)
		case *binderyv1alpha1.ModuleManifestList:
			out = append(out, o.Items...)
		default:
			return nil, fmt.Errorf("%s: document %d: unsupported kind %s", source, doc, gvk)
		}
	}
}
