package cloudformation

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCFN struct {
	createErr error
	updateErr error
	deleteErr error

	created *cfn.CreateStackInput
	updated *cfn.UpdateStackInput
	deleted *cfn.DeleteStackInput
}

func (f *fakeCFN) CreateStack(_ context.Context, in *cfn.CreateStackInput, _ ...func(*cfn.Options)) (*cfn.CreateStackOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = in
	return &cfn.CreateStackOutput{StackId: aws.String("arn:stack/created")}, nil
}

func (f *fakeCFN) UpdateStack(_ context.Context, in *cfn.UpdateStackInput, _ ...func(*cfn.Options)) (*cfn.UpdateStackOutput, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = in
	return &cfn.UpdateStackOutput{StackId: aws.String("arn:stack/updated")}, nil
}

func (f *fakeCFN) DeleteStack(_ context.Context, in *cfn.DeleteStackInput, _ ...func(*cfn.Options)) (*cfn.DeleteStackOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = in
	return &cfn.DeleteStackOutput{}, nil
}

func paramValues(params []types.Parameter) map[string]string {
	out := make(map[string]string, len(params))
	for _, p := range params {
		out[aws.ToString(p.ParameterKey)] = aws.ToString(p.ParameterValue)
	}
	return out
}

func TestSubmitCreatesStack(t *testing.T) {
	t.Parallel()

	fake := &fakeCFN{}
	s := &Submitter{cfn: fake}

	id, err := s.Submit(context.Background(), Submission{
		StackName:       "staging",
		TemplateURL:     "https://bucket.s3.amazonaws.com/templates/staging.abc.template",
		Parameters:      map[string]string{"vpcCidr": "10.0.0.0/16"},
		NotificationARN: "arn:topic",
		TimeoutMinutes:  60,
	})
	require.NoError(t, err)
	assert.Equal(t, "arn:stack/created", id)

	require.NotNil(t, fake.created)
	assert.Equal(t, "staging", aws.ToString(fake.created.StackName))
	assert.Equal(t, []string{"arn:topic"}, fake.created.NotificationARNs)
	assert.Equal(t, int32(60), aws.ToInt32(fake.created.TimeoutInMinutes))
	assert.Equal(t, types.OnFailureRollback, fake.created.OnFailure)
	assert.Equal(t, map[string]string{"vpcCidr": "10.0.0.0/16"}, paramValues(fake.created.Parameters))
}

func TestSubmitFallsBackToUpdate(t *testing.T) {
	t.Parallel()

	fake := &fakeCFN{createErr: &types.AlreadyExistsException{}}
	s := &Submitter{cfn: fake}

	id, err := s.Submit(context.Background(), Submission{
		StackName:   "staging",
		TemplateURL: "https://bucket/template",
	})
	require.NoError(t, err)
	assert.Equal(t, "arn:stack/updated", id)
	require.NotNil(t, fake.updated)
	assert.Equal(t, "staging", aws.ToString(fake.updated.StackName))
}

func TestSubmitPropagatesCreateFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeCFN{createErr: errors.New("throttled")}
	s := &Submitter{cfn: fake}

	_, err := s.Submit(context.Background(), Submission{StackName: "staging"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create stack staging")
	assert.Nil(t, fake.updated, "non-conflict errors must not trigger an update")
}

func TestStackParametersAreSorted(t *testing.T) {
	t.Parallel()

	params := stackParameters(map[string]string{
		"c": "3",
		"a": "1",
		"b": "2",
	})
	require.Len(t, params, 3)
	assert.Equal(t, "a", aws.ToString(params[0].ParameterKey))
	assert.Equal(t, "b", aws.ToString(params[1].ParameterKey))
	assert.Equal(t, "c", aws.ToString(params[2].ParameterKey))
}

func TestDeleteStack(t *testing.T) {
	t.Parallel()

	fake := &fakeCFN{}
	s := &Submitter{cfn: fake}

	require.NoError(t, s.Delete(context.Background(), "staging"))
	require.NotNil(t, fake.deleted)
	assert.Equal(t, "staging", aws.ToString(fake.deleted.StackName))
}
