package pipeline

import (
	"github.com/envforge/envforge/internal/compose"
	"github.com/envforge/envforge/internal/monitor"
	"github.com/envforge/envforge/internal/netplan"
	"github.com/envforge/envforge/internal/template"
)

// State accumulates the products of each phase so later phases can pick
// them up. Fields are nil or zero until the producing phase has run.
type State struct {
	// Address planning.
	Space    netplan.NetworkSpace
	Requests []netplan.SubnetRequest
	Subnets  []netplan.AllocatedSubnet

	// Template construction.
	Root    *template.Node
	Network *template.Node

	// Composition.
	Plan         *compose.Plan
	RootLocation string
	RootHash     string

	// Deployment.
	StackID string
	Outcome monitor.Outcome
}
