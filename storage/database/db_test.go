package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/core"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name       string
		conf       core.DatabaseConfig
		wantErrStr string
	}{
		{name: "default engine", conf: core.DatabaseConfig{}},
		{name: "memory", conf: core.DatabaseConfig{Engine: "memory"}},
		{name: "unsupported engine", conf: core.DatabaseConfig{Engine: "postgres"}, wantErrStr: `unsupported database engine "postgres"`},
		{name: "firestore without project", conf: core.DatabaseConfig{Engine: "firestore"}, wantErrStr: "firestore project ID not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, err := Open(context.Background(), tt.conf, core.NewNopLogger())
			if tt.wantErrStr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, repos.Events)
			assert.NotNil(t, repos.Favorites)
			assert.NotNil(t, repos.Applications)
			assert.NoError(t, repos.Close())
		})
	}
}
