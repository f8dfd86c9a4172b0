package service_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestImageService_SaveDataURI(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockImageStore)
	store.On("Save", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "recipes/") && strings.HasSuffix(key, ".png")
	}), mock.Anything, "image/png").Return("https://cdn.example.com/recipes/x.png", nil).Once()

	url, err := service.NewImageService(store).SaveDataURI(ctx, testhelpers.PNGDataURI(t))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/recipes/x.png", url)
	store.AssertExpectations(t)
}

func TestImageService_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := service.NewImageService(new(mocks.MockImageStore))

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"plain url", "https://example.com/a.png"},
		{"not base64", "data:image/png;base64,@@@"},
		{"text payload", "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
		{"too large", "data:image/png;base64," + strings.Repeat("A", service.MaxImageBytes*4/3+8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveDataURI(ctx, tt.input)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "image")
		})
	}
}

func TestImageService_StoreFailure(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockImageStore)
	store.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket unavailable"))

	_, err := service.NewImageService(store).SaveDataURI(ctx, testhelpers.PNGDataURI(t))
	require.Error(t, err)
	var verr *service.ValidationError
	assert.False(t, errors.As(err, &verr), "storage failures are not the client's fault")
}

func TestLocalImageStore(t *testing.T) {
	root := t.TempDir()
	store := service.NewLocalImageStore(root, "/media/")

	url, err := store.Save(context.Background(), "recipes/abc.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/recipes/abc.png", url)

	data, err := os.ReadFile(filepath.Join(root, "recipes", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestImageService_Discard(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockImageStore)
	store.On("Delete", ctx, "recipes/x.png").Return(nil).Once()

	svc := service.NewImageService(store)
	require.NoError(t, svc.Discard(ctx, "https://cdn.example.com/recipes/x.png"))
	assert.Error(t, svc.Discard(ctx, ""))
	store.AssertExpectations(t)
}

func TestLocalImageStore_Delete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := service.NewLocalImageStore(root, "/media/")

	_, err := store.Save(ctx, "recipes/abc.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "recipes/abc.png"))
	_, err = os.Stat(filepath.Join(root, "recipes", "abc.png"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, "recipes/abc.png"), "missing file is not an error")
}
