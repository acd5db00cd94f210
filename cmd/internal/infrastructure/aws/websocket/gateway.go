package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
)

// HeaderConnectionID is set by the API Gateway integration on $connect,
// $disconnect and $default requests.
const HeaderConnectionID = "X-Connection-Id"

// ErrGone means the client already went away and the connection id can be forgotten.
var ErrGone = errors.New("websocket: connection is gone")

// Gateway pushes frames to connected clients.
type Gateway interface {
	Send(ctx context.Context, connID string, frame any) error
	Close(ctx context.Context, connID string) error
}

type APIGateway struct {
	client *apigatewaymanagementapi.Client
}

// NewAPIGateway targets the management endpoint of a websocket stage
// (https://{api-id}.execute-api.{region}.amazonaws.com/{stage}).
func NewAPIGateway(ctx context.Context, endpoint, region string) (*APIGateway, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &APIGateway{client: client}, nil
}

func (g *APIGateway) Send(ctx context.Context, connID string, frame any) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	_, err = g.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connID),
		Data:         data,
	})
	return translate(err)
}

func (g *APIGateway) Close(ctx context.Context, connID string) error {
	_, err := g.client.DeleteConnection(ctx, &apigatewaymanagementapi.DeleteConnectionInput{
		ConnectionId: aws.String(connID),
	})
	return translate(err)
}

func translate(err error) error {
	var gone *types.GoneException
	if errors.As(err, &gone) {
		return ErrGone
	}
	return err
}

// Discard drops every frame. It stands in when no stage endpoint is configured.
type Discard struct{}

func (Discard) Send(context.Context, string, any) error { return nil }

func (Discard) Close(context.Context, string) error { return nil }
