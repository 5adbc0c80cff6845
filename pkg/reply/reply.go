package reply

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/pkg/logger"
)

var Module = fx.Invoke(New)

var iLogger = logger.NewNop()

type Params struct {
	fx.In
	Logger logger.Logger
}

func New(params Params) {
	iLogger = params.Logger
}

func Json(w http.ResponseWriter, status int, data interface{}) {
	reply, err := json.Marshal(data)
	if err != nil {
		iLogger.Error(context.TODO(), "err on json.Marshal", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(reply)
}

// HTML renders tpl with data. Rendering happens before the header is written so a template error
// still produces a clean 500.
func HTML(w http.ResponseWriter, status int, tpl *template.Template, data interface{}) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		iLogger.Error(context.TODO(), "err on tpl.Execute", zap.String("template", tpl.Name()), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
