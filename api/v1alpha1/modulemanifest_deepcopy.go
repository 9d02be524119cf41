package v1alpha1

import (
	"maps"
	"slices"

	"k8s.io/apimachinery/pkg/runtime"
)

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ModuleManifest) DeepCopyInto(out *ModuleManifest) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	out.Status = in.Status
}

// DeepCopy copies the receiver, creating a new ModuleManifest.
func (in *ModuleManifest) DeepCopy() *ModuleManifest {
	if in == nil {
		return nil
	}
	out := new(ModuleManifest)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *ModuleManifest) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ModuleManifestList) DeepCopyInto(out *ModuleManifestList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]ModuleManifest, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy copies the receiver, creating a new ModuleManifestList.
func (in *ModuleManifestList) DeepCopy() *ModuleManifestList {
	if in == nil {
		return nil
	}
	out := new(ModuleManifestList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *ModuleManifestList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ModuleManifestSpec) DeepCopyInto(out *ModuleManifestSpec) {
	*out = *in
	if in.Exports != nil {
		out.Exports = make([]PackageExport, len(in.Exports))
		for i := range in.Exports {
			in.Exports[i].DeepCopyInto(&out.Exports[i])
		}
	}
	if in.Imports != nil {
		out.Imports = make([]PackageImport, len(in.Imports))
		for i := range in.Imports {
			in.Imports[i].DeepCopyInto(&out.Imports[i])
		}
	}
	out.Requires = slices.Clone(in.Requires)
	out.DynamicImports = slices.Clone(in.DynamicImports)
	out.ExecutionEnvironments = slices.Clone(in.ExecutionEnvironments)
	if in.NativeLibraries != nil {
		out.NativeLibraries = make([]NativeLibrary, len(in.NativeLibraries))
		for i := range in.NativeLibraries {
			in.NativeLibraries[i].DeepCopyInto(&out.NativeLibraries[i])
		}
	}
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *PackageExport) DeepCopyInto(out *PackageExport) {
	*out = *in
	out.Uses = slices.Clone(in.Uses)
	out.Attributes = maps.Clone(in.Attributes)
	out.Mandatory = slices.Clone(in.Mandatory)
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *PackageImport) DeepCopyInto(out *PackageImport) {
	*out = *in
	out.Attributes = maps.Clone(in.Attributes)
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *NativeLibrary) DeepCopyInto(out *NativeLibrary) {
	*out = *in
	out.OSNames = slices.Clone(in.OSNames)
	out.Processors = slices.Clone(in.Processors)
}
