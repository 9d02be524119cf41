package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ModuleManifest declares a module's identity, the packages it exports and
// what it needs from other modules.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=mm
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Module",type=string,JSONPath=`.spec.module.id`
// +kubebuilder:printcolumn:name="Version",type=string,JSONPath=`.spec.module.version`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type ModuleManifest struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ModuleManifestSpec   `json:"spec"`
	Status ModuleManifestStatus `json:"status,omitempty"`
}

type ModuleManifestSpec struct {
	Module   ModuleIdentity      `json:"module"`
	Exports  []PackageExport     `json:"exports,omitempty"`
	Imports  []PackageImport     `json:"imports,omitempty"`
	Requires []ModuleRequirement `json:"requires,omitempty"`
	// DynamicImports are package patterns resolved on demand, e.g.
	// "org.example.plugins.*" or "*".
	DynamicImports        []string        `json:"dynamicImports,omitempty"`
	ExecutionEnvironments []string        `json:"executionEnvironments,omitempty"`
	NativeLibraries       []NativeLibrary `json:"nativeLibraries,omitempty"`
}

type PackageExport struct {
	Package string `json:"package"`
	Version string `json:"version,omitempty"`
	// Uses lists packages this package's implementation depends on.
	Uses       []string          `json:"uses,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	// Mandatory names attributes an import must match explicitly.
	Mandatory []string `json:"mandatory,omitempty"`
}

type PackageImport struct {
	Package           string            `json:"package"`
	VersionConstraint string            `json:"versionConstraint,omitempty"`
	DependencyMode    DependencyMode    `json:"dependencyMode,omitempty"`
	Attributes        map[string]string `json:"attributes,omitempty"`
}

type ModuleRequirement struct {
	ModuleID          string         `json:"moduleId"`
	VersionConstraint string         `json:"versionConstraint,omitempty"`
	DependencyMode    DependencyMode `json:"dependencyMode,omitempty"`
	Visibility        Visibility     `json:"visibility,omitempty"`
}

type NativeLibrary struct {
	Path       string   `json:"path"`
	OSNames    []string `json:"osNames,omitempty"`
	Processors []string `json:"processors,omitempty"`
}

type ModuleManifestStatus struct {
	Phase   string `json:"phase,omitempty"`
	Message string `json:"message,omitempty"`
}

// +kubebuilder:object:root=true
type ModuleManifestList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ModuleManifest `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ModuleManifest{}, &ModuleManifestList{})
}
