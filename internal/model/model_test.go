package model

import "testing"

func TestNeuronTypeValid(t *testing.T) {
	valid := []NeuronType{NeuronFunction, NeuronClass, NeuronMethod, NeuronTypeKind,
		NeuronInterface, NeuronModule, NeuronConfig, NeuronDoc, NeuronVariable, NeuronExport}
	for _, ty := range valid {
		if !ty.Valid() {
			t.Errorf("expected %q to be valid", ty)
		}
	}
	if NeuronType("bogus").Valid() {
		t.Error("expected bogus neuron type to be invalid")
	}
}

func TestSynapseTypeValid(t *testing.T) {
	valid := []SynapseType{SynapseImports, SynapseCalls, SynapseTypeReference,
		SynapseExtends, SynapseProximity, SynapseCoActivation, SynapseSemantic}
	for _, ty := range valid {
		if !ty.Valid() {
			t.Errorf("expected %q to be valid", ty)
		}
	}
	if SynapseType("bogus").Valid() {
		t.Error("expected bogus synapse type to be invalid")
	}
}

func TestSynapseTypeIsStructural(t *testing.T) {
	if SynapseCoActivation.IsStructural() {
		t.Error("co_activation should not be structural")
	}
	if !SynapseImports.IsStructural() {
		t.Error("imports should be structural")
	}
}
