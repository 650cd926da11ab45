package auth

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "surrounding spaces", header: "  Bearer   abc  ", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "scheme only", header: "Bearer", wantErr: true},
		{name: "scheme and space", header: "Bearer ", wantErr: true},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "lowercase scheme", header: "bearer abc", wantErr: true},
		{name: "bare token", header: "abc.def.ghi", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrorUnauthenticated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserNameContext(t *testing.T) {
	_, ok := UserNameFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithUserName(context.Background(), "alice")
	name, ok := UserNameFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", name)
}
