package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// CapabilityBinding records a resolved wire from a consumer requirement to a
// provider capability.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=capbind
// +kubebuilder:printcolumn:name="Namespace",type=string,JSONPath=`.spec.namespace`
// +kubebuilder:printcolumn:name="Name",type=string,JSONPath=`.spec.name`
// +kubebuilder:printcolumn:name="Provider",type=string,JSONPath=`.spec.provider.moduleManifestName`
// +kubebuilder:printcolumn:name="Consumer",type=string,JSONPath=`.spec.consumer.moduleManifestName`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type CapabilityBinding struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   CapabilityBindingSpec   `json:"spec"`
	Status CapabilityBindingStatus `json:"status,omitempty"`
}

type CapabilityBindingSpec struct {
	// CapabilityNamespace is "package" or "module".
	CapabilityNamespace string `json:"namespace"`
	// Name is the package name or the provider's module id.
	Name     string      `json:"name"`
	Consumer ConsumerRef `json:"consumer"`
	Provider ProviderRef `json:"provider"`
	// Packages lists what a module binding makes visible, re-exports included.
	Packages []string `json:"packages,omitempty"`
	// Dynamic marks bindings added by a dynamic import.
	Dynamic bool `json:"dynamic,omitempty"`
}

type ConsumerRef struct {
	ModuleManifestName string           `json:"moduleManifestName"`
	Module             ModuleIdentity   `json:"module"`
	Requirement        *RequirementHint `json:"requirement,omitempty"`
}

type RequirementHint struct {
	Filter         string         `json:"filter,omitempty"`
	DependencyMode DependencyMode `json:"dependencyMode,omitempty"`
	Visibility     Visibility     `json:"visibility,omitempty"`
}

type ProviderRef struct {
	ModuleManifestName string         `json:"moduleManifestName"`
	Module             ModuleIdentity `json:"module"`
	CapabilityVersion  string         `json:"capabilityVersion,omitempty"`
}

type CapabilityBindingStatus struct {
	Phase            string       `json:"phase,omitempty"`
	Message          string       `json:"message,omitempty"`
	LastResolvedTime *metav1.Time `json:"lastResolvedTime,omitempty"`
}

// +kubebuilder:object:root=true
type CapabilityBindingList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []CapabilityBinding `json:"items"`
}

func init() {
	SchemeBuilder.Register(&CapabilityBinding{}, &CapabilityBindingList{})
}
