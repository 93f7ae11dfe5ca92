package main

// Build for the provided.al2023 runtime:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -tags lambda.norpc -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// proxy builds the router on the first invocation and reuses it while the
// execution environment stays warm.
type proxy struct {
	build func() (*gin.Engine, error)

	once    sync.Once
	adapter *ginadapter.GinLambdaV2
	err     error
}

func (p *proxy) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	p.once.Do(func() {
		router, err := p.build()
		if err != nil {
			p.err = err
			telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": err.Error()})
			return
		}
		p.adapter = ginadapter.NewV2(router)
	})
	if p.err != nil {
		return unavailable(req.RequestContext.RequestID), nil
	}
	return p.adapter.ProxyWithContext(ctx, req)
}

func unavailable(requestID string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{
		Code:    "service_unavailable",
		Message: "service failed to start",
		Details: map[string]string{"requestId": requestID},
	}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	p := &proxy{build: func() (*gin.Engine, error) {
		app, err := bootstrap.Build(config.Load())
		if err != nil {
			return nil, err
		}
		return app.Router, nil
	}}
	lambda.Start(p.handle)
}
