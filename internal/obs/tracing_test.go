package obs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartSpan_WorksWithoutInitTracing(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.span")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End()
}

func TestInitTracing_ReturnsWorkingShutdown(t *testing.T) {
	shutdown, err := InitTracing(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	_, span := StartSpan(context.Background(), "test.span.after.init")
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}
