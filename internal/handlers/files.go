package handlers

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/frankli0324/go-httpd/internal/model"
	"github.com/frankli0324/go-httpd/internal/router"
	"github.com/frankli0324/go-httpd/internal/storage"
)

const octetStream = "application/octet-stream"

// Files serves /files/<name> out of a storage.Store.
type Files struct {
	Store storage.Store
}

func (f *Files) Get(ctx context.Context, _ *model.Request) *model.Response {
	name, bad := fileName(ctx)
	if bad != nil {
		return bad
	}
	data, err := f.Store.Read(name)
	if err != nil {
		return storageError(ctx, "read", name, err)
	}
	return model.NewResponse(model.StatusOK).WithText(octetStream, data)
}

func (f *Files) Post(ctx context.Context, req *model.Request) *model.Response {
	name, bad := fileName(ctx)
	if bad != nil {
		return bad
	}
	if err := f.Store.Write(name, req.Body()); err != nil {
		return storageError(ctx, "write", name, err)
	}
	return model.Empty(model.StatusCreated)
}

func (f *Files) Delete(ctx context.Context, _ *model.Request) *model.Response {
	name, bad := fileName(ctx)
	if bad != nil {
		return bad
	}
	if err := f.Store.Delete(name); err != nil {
		return storageError(ctx, "delete", name, err)
	}
	return model.Empty(model.StatusOK)
}

// fileName rejects anything that isn't a plain file name. The target is not
// percent-decoded, "%2e%2e" is just an odd name.
func fileName(ctx context.Context) (string, *model.Response) {
	name := router.Wildcard(ctx)
	if !storage.ValidName(name) {
		return "", model.Text(model.StatusBadRequest, "invalid file name")
	}
	return name, nil
}

func storageError(ctx context.Context, op, name string, err error) *model.Response {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return model.Empty(model.StatusNotFound)
	case errors.Is(err, storage.ErrInvalidName):
		return model.Text(model.StatusBadRequest, "invalid file name")
	}
	zerolog.Ctx(ctx).Error().Err(err).Str("op", op).Str("file", name).Msg("files: storage failure")
	return model.Empty(model.StatusInternalServerError)
}
