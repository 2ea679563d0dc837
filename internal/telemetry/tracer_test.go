package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "localhost:4318", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestResourceNamesService(t *testing.T) {
	res := newResource("1.2.3")

	name, ok := res.Set().Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, ServiceName, name.AsString())

	version, ok := res.Set().Value(attribute.Key("service.version"))
	require.True(t, ok)
	assert.Equal(t, "1.2.3", version.AsString())
}
