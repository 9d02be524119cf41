package manifest

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	binderyv1alpha1 "github.com/bayleafwalker/bindery/api/v1alpha1"
	"github.com/bayleafwalker/bindery/internal/module"
	"github.com/bayleafwalker/bindery/internal/resolver"
)

var reNonDNS = regexp.MustCompile(`[^a-z0-9-]+`)

// Bindings renders every wire of wm as a CapabilityBinding, ordered by
// consumer with package bindings before module bindings, then by name.
// Wires imported by dynamicRoot are marked dynamic; pass nil for a static
// resolution.
func (c *Catalog) Bindings(wm resolver.WireMap, dynamicRoot *module.Module) *binderyv1alpha1.CapabilityBindingList {
	list := &binderyv1alpha1.CapabilityBindingList{
		TypeMeta: metav1.TypeMeta{
			APIVersion: binderyv1alpha1.GroupVersion.String(),
			Kind:       "CapabilityBindingList",
		},
	}
	for _, wires := range wm {
		for _, w := range wires {
			list.Items = append(list.Items, c.binding(w, dynamicRoot != nil && w.Importer() == dynamicRoot))
		}
	}
	sort.Slice(list.Items, func(i, j int) bool {
		a, b := list.Items[i].Spec, list.Items[j].Spec
		if a.Consumer.ModuleManifestName != b.Consumer.ModuleManifestName {
			return a.Consumer.ModuleManifestName < b.Consumer.ModuleManifestName
		}
		if a.CapabilityNamespace != b.CapabilityNamespace {
			return a.CapabilityNamespace > b.CapabilityNamespace
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return list.Items[i].Name < list.Items[j].Name
	})
	return list
}

func (c *Catalog) binding(w module.Wire, dynamic bool) binderyv1alpha1.CapabilityBinding {
	consumer, provider, capability, req := w.Importer(), w.Exporter(), w.Capability(), w.Requirement()

	hint := &binderyv1alpha1.RequirementHint{
		Filter:         req.Filter().String(),
		DependencyMode: binderyv1alpha1.DependencyModeRequired,
	}
	if req.IsOptional() {
		hint.DependencyMode = binderyv1alpha1.DependencyModeOptional
	}
	if req.Namespace() == module.NamespaceModule {
		hint.Visibility = binderyv1alpha1.VisibilityPrivate
		if req.IsReexport() {
			hint.Visibility = binderyv1alpha1.VisibilityReexport
		}
	}

	spec := binderyv1alpha1.CapabilityBindingSpec{
		CapabilityNamespace: capability.Namespace(),
		Name:                capability.Name(),
		Consumer: binderyv1alpha1.ConsumerRef{
			ModuleManifestName: c.ManifestName(consumer),
			Module:             identity(consumer),
			Requirement:        hint,
		},
		Provider: binderyv1alpha1.ProviderRef{
			ModuleManifestName: c.ManifestName(provider),
			Module:             identity(provider),
			CapabilityVersion:  capability.Version().String(),
		},
		Dynamic: dynamic,
	}
	if mw, ok := w.(*module.ModuleWire); ok {
		spec.Packages = mw.Packages()
	}

	return binderyv1alpha1.CapabilityBinding{
		TypeMeta: metav1.TypeMeta{
			APIVersion: binderyv1alpha1.GroupVersion.String(),
			Kind:       "CapabilityBinding",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: stableBindingName(spec.Consumer.ModuleManifestName, spec.CapabilityNamespace, spec.Name, spec.Provider.ModuleManifestName),
			Labels: map[string]string{
				"bindery.platform/consumer": labelValue(spec.Consumer.ModuleManifestName),
				"bindery.platform/provider": labelValue(spec.Provider.ModuleManifestName),
			},
		},
		Spec: spec,
	}
}

func identity(m *module.Module) binderyv1alpha1.ModuleIdentity {
	return binderyv1alpha1.ModuleIdentity{ID: m.SymbolicName(), Version: m.Version().String()}
}

func stableBindingName(consumer, namespace, name, provider string) string {
	// Object names must be DNS subdomains; keep to DNS labels.
	base := fmt.Sprintf("cb-%s-%s-%s-%s",
		consumer,
		namespace,
		strings.ReplaceAll(name, ".", "-"),
		provider,
	)
	base = strings.ToLower(base)
	base = reNonDNS.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "cb"
	}
	if len(base) <= 253 {
		return base
	}

	h := sha1.Sum([]byte(base))
	suffix := "-" + hex.EncodeToString(h[:])[:8]
	base = strings.Trim(base[:253-len(suffix)], "-")
	return base + suffix
}

func labelValue(s string) string {
	s = strings.Trim(reNonDNS.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if len(s) > 63 {
		s = strings.Trim(s[:63], "-")
	}
	return s
}

// Marshal renders obj as "yaml" or "json".
func Marshal(obj any, format string) ([]byte, error) {
	switch format {
	case "", "yaml":
		return yaml.Marshal(obj)
	case "json":
		return json.MarshalIndent(obj, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
