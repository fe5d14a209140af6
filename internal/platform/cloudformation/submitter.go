// Package cloudformation submits rendered environments to the deployment
// service.
package cloudformation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

// api is the subset of the CloudFormation client the submitter uses.
type api interface {
	CreateStack(ctx context.Context, in *cfn.CreateStackInput, opts ...func(*cfn.Options)) (*cfn.CreateStackOutput, error)
	UpdateStack(ctx context.Context, in *cfn.UpdateStackInput, opts ...func(*cfn.Options)) (*cfn.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, in *cfn.DeleteStackInput, opts ...func(*cfn.Options)) (*cfn.DeleteStackOutput, error)
}

// Submission describes one root stack to create or update.
type Submission struct {
	// StackName is the deployed name of the root stack.
	StackName string
	// TemplateURL points at the published root template artifact.
	TemplateURL string
	// Parameters are the root template's resolved parameter values.
	Parameters map[string]string
	// NotificationARN is where the service reports stack events. Empty
	// means no notifications.
	NotificationARN string
	// TimeoutMinutes bounds stack creation. Zero means the service default.
	TimeoutMinutes int32
}

// Submitter creates or updates root stacks.
type Submitter struct {
	cfn api
}

// NewSubmitter builds a Submitter from a resolved AWS configuration.
func NewSubmitter(cfg aws.Config) *Submitter {
	return &Submitter{cfn: cfn.NewFromConfig(cfg)}
}

// Submit creates the stack, falling back to an update when a stack with the
// same name already exists. It returns the stack ID.
func (s *Submitter) Submit(ctx context.Context, sub Submission) (string, error) {
	input := &cfn.CreateStackInput{
		StackName:    aws.String(sub.StackName),
		TemplateURL:  aws.String(sub.TemplateURL),
		Parameters:   stackParameters(sub.Parameters),
		Capabilities: []types.Capability{types.CapabilityCapabilityIam},
		OnFailure:    types.OnFailureRollback,
	}
	if sub.NotificationARN != "" {
		input.NotificationARNs = []string{sub.NotificationARN}
	}
	if sub.TimeoutMinutes > 0 {
		input.TimeoutInMinutes = aws.Int32(sub.TimeoutMinutes)
	}

	out, err := s.cfn.CreateStack(ctx, input)
	if err == nil {
		return aws.ToString(out.StackId), nil
	}
	if !isAlreadyExists(err) {
		return "", fmt.Errorf("failed to create stack %s: %w", sub.StackName, err)
	}

	return s.update(ctx, sub)
}

// Delete removes a deployed stack.
func (s *Submitter) Delete(ctx context.Context, stackName string) error {
	_, err := s.cfn.DeleteStack(ctx, &cfn.DeleteStackInput{StackName: aws.String(stackName)})
	if err != nil {
		return fmt.Errorf("failed to delete stack %s: %w", stackName, err)
	}
	return nil
}

func (s *Submitter) update(ctx context.Context, sub Submission) (string, error) {
	input := &cfn.UpdateStackInput{
		StackName:    aws.String(sub.StackName),
		TemplateURL:  aws.String(sub.TemplateURL),
		Parameters:   stackParameters(sub.Parameters),
		Capabilities: []types.Capability{types.CapabilityCapabilityIam},
	}
	if sub.NotificationARN != "" {
		input.NotificationARNs = []string{sub.NotificationARN}
	}

	out, err := s.cfn.UpdateStack(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to update stack %s: %w", sub.StackName, err)
	}
	return aws.ToString(out.StackId), nil
}

// stackParameters converts the parameter map into the API shape, sorted by
// key so submissions are deterministic.
func stackParameters(params map[string]string) []types.Parameter {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]types.Parameter, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.Parameter{
			ParameterKey:   aws.String(k),
			ParameterValue: aws.String(params[k]),
		})
	}
	return out
}

func isAlreadyExists(err error) bool {
	var exists *types.AlreadyExistsException
	if errors.As(err, &exists) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "AlreadyExistsException"
}
