package v1alpha1

import (
	"slices"

	"k8s.io/apimachinery/pkg/runtime"
)

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *CapabilityBinding) DeepCopyInto(out *CapabilityBinding) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy copies the receiver, creating a new CapabilityBinding.
func (in *CapabilityBinding) DeepCopy() *CapabilityBinding {
	if in == nil {
		return nil
	}
	out := new(CapabilityBinding)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *CapabilityBinding) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *CapabilityBindingList) DeepCopyInto(out *CapabilityBindingList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]CapabilityBinding, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy copies the receiver, creating a new CapabilityBindingList.
func (in *CapabilityBindingList) DeepCopy() *CapabilityBindingList {
	if in == nil {
		return nil
	}
	out := new(CapabilityBindingList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *CapabilityBindingList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *CapabilityBindingSpec) DeepCopyInto(out *CapabilityBindingSpec) {
	*out = *in
	if in.Consumer.Requirement != nil {
		req := *in.Consumer.Requirement
		out.Consumer.Requirement = &req
	}
	out.Packages = slices.Clone(in.Packages)
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *CapabilityBindingStatus) DeepCopyInto(out *CapabilityBindingStatus) {
	*out = *in
	if in.LastResolvedTime != nil {
		out.LastResolvedTime = in.LastResolvedTime.DeepCopy()
	}
}
