package messaging_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/messaging"
)

func TestSNSProvider_Send(t *testing.T) {
	t.Parallel()

	client := &MockSNSClient{}
	client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.PhoneNumber) == "+14155550100" &&
			aws.ToString(in.Message) == "code 1" &&
			aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue) == "Transactional" &&
			aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue) == "ACME"
	})).Return(&sns.PublishOutput{MessageId: aws.String("sns-1")}, nil).Once()
	client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.PhoneNumber) == "+15005550001"
	})).Return(nil, &smithy.GenericAPIError{Code: "InvalidParameter", Message: "Invalid parameter: PhoneNumber"}).Once()

	p := messaging.NewSNSProviderWithClient(client, messaging.SNSConfig{SenderID: "ACME"})
	assert.Equal(t, "sns", p.Name())

	results, err := p.Send(context.Background(), []messaging.Message{
		{To: "+14155550100", Body: "code 1"},
		{To: "+15005550001", Body: "code 2"},
		{To: "+447700900123", Body: "hi", Channel: messaging.ChannelWhatsApp},
		{To: "+447700900123", Body: "hi", MediaURLs: []string{"https://acme.io/a.png"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "sns-1", results[0].MessageID)
	assert.Contains(t, results[1].Error, "InvalidParameter")
	assert.Contains(t, results[2].Error, messaging.ErrChannelNotSupported.Error())
	assert.Contains(t, results[3].Error, messaging.ErrMediaNotSupported.Error())
	client.AssertExpectations(t)
}

func TestSNSProvider_Send_ThrottledIsThrown(t *testing.T) {
	t.Parallel()

	client := &MockSNSClient{}
	client.On("Publish", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"})

	results, err := messaging.NewSNSProviderWithClient(client, messaging.SNSConfig{}).
		Send(context.Background(), []messaging.Message{{To: "+14155550100", Body: "hi"}})
	require.Error(t, err)
	assert.Nil(t, results)
}

func TestSNSProvider_Health(t *testing.T) {
	t.Parallel()

	client := &MockSNSClient{}
	client.On("GetSMSAttributes", mock.Anything, mock.Anything).Return(&sns.GetSMSAttributesOutput{
		Attributes: map[string]string{"MonthlySpendLimit": "10"},
	}, nil).Once()

	info, err := messaging.NewSNSProviderWithClient(client, messaging.SNSConfig{}).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, info.OK)
	assert.Equal(t, "10", info.Details["MonthlySpendLimit"])
}
