package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/envforge/envforge/internal/builders"
	"github.com/envforge/envforge/internal/compose"
	"github.com/envforge/envforge/internal/monitor"
	"github.com/envforge/envforge/internal/netplan"
	"github.com/envforge/envforge/internal/platform/cloudformation"
	"github.com/envforge/envforge/internal/template"
	"github.com/envforge/envforge/internal/util/naming"
)

// PlanAddresses carves the configured address space into one subnet per
// layer per availability zone.
type PlanAddresses struct{}

func (p *PlanAddresses) Name() string { return "plan-addresses" }

func (p *PlanAddresses) Run(ctx *Context) error {
	net := ctx.Config.Network

	specs := make([]netplan.SubnetSpec, 0, len(net.Subnets))
	for _, s := range net.Subnets {
		specs = append(specs, netplan.SubnetSpec{
			Name:      s.Name,
			Role:      s.Role,
			PrefixLen: s.PrefixLength,
		})
	}

	space := netplan.NetworkSpace{CIDR: net.CIDR}
	requests := netplan.ExpandPerAZ(specs, net.AZCount)

	subnets, err := netplan.Plan(space, requests)
	if err != nil {
		return fmt.Errorf("failed to plan address space: %w", err)
	}

	ctx.State.Space = space
	ctx.State.Requests = requests
	ctx.State.Subnets = subnets

	for _, s := range subnets {
		ctx.Observer.Printf("allocated %s to %s (AZ %d)", s.CIDR, s.Name, s.AZ)
	}
	return nil
}

// BuildTemplates constructs the root and base network templates and wires
// the network in as a child of the root.
type BuildTemplates struct{}

func (p *BuildTemplates) Name() string { return "build-templates" }

func (p *BuildTemplates) Run(ctx *Context) error {
	cfg := ctx.Config
	if len(ctx.State.Subnets) == 0 {
		return errors.New("no allocated subnets: address planning must run first")
	}

	root := builders.BuildRoot(cfg.Environment.Name, cfg.Network.CIDR, cfg.Environment.Bucket)
	network := builders.BuildNetwork(ctx.State.Space, ctx.State.Subnets, cfg.Network.AZCount, cfg.Network.AZReferenceRole)
	root.AddChild(network)

	ctx.State.Root = root
	ctx.State.Network = network
	return nil
}

// ComposeGraph binds the template tree, publishes every rendered artifact
// and records the deployment plan. The root template is rendered and
// published last so it embeds the final locations of all of its children.
type ComposeGraph struct{}

func (p *ComposeGraph) Name() string { return "compose-graph" }

func (p *ComposeGraph) Run(ctx *Context) error {
	cfg := ctx.Config
	root := ctx.State.Root
	if root == nil {
		return errors.New("no root template: template construction must run first")
	}

	resolver := compose.NewResolver(p.overrides(ctx), cfg.Network.AZReferenceRole)
	builder := &compose.GraphBuilder{
		Resolver:       resolver,
		Publisher:      ctx.Publisher,
		TimeoutMinutes: cfg.Deploy.StackTimeoutMinutes,
		Now:            ctx.Clock,
	}

	plan, err := builder.Compose(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to compose template graph: %w", err)
	}
	for _, stack := range plan.Stacks {
		LogArtifactPublished(ctx.Observer, p.Name(), stack.Name, stack.Location)
	}

	body, hash, err := template.Render(root, ctx.now())
	if err != nil {
		return fmt.Errorf("failed to render root template: %w", err)
	}
	if err := template.ValidateRendered(body); err != nil {
		return fmt.Errorf("rendered root template failed validation: %w", err)
	}
	location, err := ctx.Publisher.Publish(ctx, root.Name, body)
	if err != nil {
		return fmt.Errorf("failed to publish root template: %w", err)
	}
	root.Hash = hash
	root.Location = location
	LogArtifactPublished(ctx.Observer, p.Name(), root.Name, location)

	ctx.State.Plan = plan
	ctx.State.RootLocation = location
	ctx.State.RootHash = hash
	return nil
}

// overrides turns the configured literal overrides into binding values and
// redirects the availabilityZone<N> convention at the network stack's
// published outputs. At the root there is no subnet resource to attach the
// convention to, so without the redirect a sibling consuming an
// availabilityZone<N> parameter would bind against a nonexistent target.
func (p *ComposeGraph) overrides(ctx *Context) map[string]template.Value {
	cfg := ctx.Config

	values := make(map[string]template.Value, len(cfg.Overrides)+cfg.Network.AZCount)
	for az := 0; az < cfg.Network.AZCount; az++ {
		values[template.AZParameterName(az)] = template.GetAtt{
			Target:    compose.StackResourceID(builders.NetworkTemplateName),
			Attribute: "Outputs." + template.AZParameterName(az),
		}
	}
	for name, value := range cfg.Overrides {
		values[name] = template.String(value)
	}
	return values
}

// SubmitAndWatch submits the published root stack with an ephemeral
// notification channel attached and watches status events until the stack
// reaches a terminal state. The channel pair is always torn down, whatever
// the outcome.
type SubmitAndWatch struct{}

func (p *SubmitAndWatch) Name() string { return "submit-and-watch" }

func (p *SubmitAndWatch) Run(ctx *Context) (err error) {
	cfg := ctx.Config
	if ctx.Submitter == nil || ctx.Transport == nil {
		return errors.New("deployment requires a submitter and a notification transport")
	}
	if ctx.State.RootLocation == "" {
		return errors.New("no published root template: composition must run first")
	}

	mon := monitor.New(ctx.Transport,
		monitor.WithTimeout(time.Duration(cfg.Deploy.MonitorTimeoutMinutes)*time.Minute),
		monitor.WithLogger(ctx.Observer),
		monitor.WithClock(ctx.Clock),
	)
	mon.AddHandler(statusHandler(ctx.Observer))

	ch, err := mon.Setup(ctx, cfg.Environment.Name)
	if err != nil {
		return fmt.Errorf("failed to set up notification channel: %w", err)
	}
	ctx.Observer.Event(Event{
		Type:     EventChannelCreated,
		Phase:    p.Name(),
		Resource: ch.Name(),
		Message:  "notification channel ready",
	})
	defer func() {
		if terr := mon.Teardown(ctx, ch); terr != nil {
			ctx.Observer.Printf("failed to tear down notification channel %s: %v", ch.Name(), terr)
			if err == nil {
				err = terr
			}
			return
		}
		ctx.Observer.Event(Event{
			Type:     EventChannelDeleted,
			Phase:    p.Name(),
			Resource: ch.Name(),
			Message:  "notification channel removed",
		})
	}()

	rootStack := naming.RootStack(cfg.Environment.Name)
	stackID, err := ctx.Submitter.Submit(ctx, cloudformation.Submission{
		StackName:       rootStack,
		TemplateURL:     ctx.State.RootLocation,
		NotificationARN: ch.PublishEndpoint(),
		TimeoutMinutes:  int32(cfg.Deploy.StackTimeoutMinutes),
	})
	if err != nil {
		return fmt.Errorf("failed to submit stack %s: %w", rootStack, err)
	}
	ctx.State.StackID = stackID
	ctx.Observer.Event(Event{
		Type:     EventStackSubmitted,
		Phase:    p.Name(),
		Resource: rootStack,
		Message:  "stack submitted",
		Fields:   map[string]string{"stack_id": stackID},
	})

	outcome, err := mon.Watch(ctx, ch, rootStack)
	ctx.State.Outcome = outcome
	if err != nil {
		return fmt.Errorf("failed while watching stack %s: %w", rootStack, err)
	}

	switch outcome {
	case monitor.OutcomeComplete:
		return nil
	case monitor.OutcomeTimedOut:
		return fmt.Errorf("deployment of %s timed out", rootStack)
	default:
		return fmt.Errorf("deployment of %s failed", rootStack)
	}
}

// statusHandler mirrors every stack event into the observer stream. It never
// deactivates; the watch loop ends on the root stack's terminal status.
func statusHandler(observer Observer) monitor.Handler {
	return monitor.HandlerFunc(func(ev monitor.Event) bool {
		observer.Event(Event{
			Type:     EventStackStatus,
			Resource: ev.LogicalID,
			Message:  ev.Status,
			Fields:   map[string]string{"kind": ev.Kind},
		})
		return false
	})
}
