package errutil_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/controltower/pkg/utils/errutil"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
)

func loggerContext(buf *bytes.Buffer) context.Context {
	return logging.With(context.Background(), slog.New(slog.NewJSONHandler(buf, nil)))
}

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	ctx := loggerContext(&buf)

	gt.NoError(t, errutil.Handle(ctx, nil, "ignored"))
	gt.Number(t, buf.Len()).Equal(0)

	sentinel := goerr.New("backend unavailable")
	err := errutil.Handle(ctx, goerr.Wrap(sentinel, "failed to refresh", goerr.V("action_id", 3)), "refresh failed")
	gt.Error(t, err).Is(sentinel)

	out := buf.String()
	gt.B(t, strings.Contains(out, `"msg":"refresh failed"`)).True()
	gt.B(t, strings.Contains(out, `"action_id":3`)).True()
}

func TestHandleHTTP(t *testing.T) {
	var buf bytes.Buffer
	ctx := loggerContext(&buf)

	w := httptest.NewRecorder()
	errutil.HandleHTTP(ctx, w, goerr.New("invalid view"), http.StatusBadRequest)

	gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	gt.B(t, strings.Contains(w.Body.String(), "invalid view")).True()
	gt.B(t, strings.Contains(buf.String(), `"status":400`)).True()
}
