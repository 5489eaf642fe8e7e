// logger.go provides file-based logging for every warehouse exchange.
//
// Logs are written to query.log next to the application log
// (~/.progression/logs by default). Queries are logged in their inlined,
// escaped form.
package ai

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/DachengChen/progression/applog"
)

var (
	logMu   sync.Mutex
	logOnce sync.Once
	logOut  io.Writer
)

// initLog opens (or creates) the log file. Called once lazily.
func initLog() {
	logOnce.Do(func() {
		logDir := applog.Dir()
		if logDir == "" {
			logDir = applog.DefaultDir()
		}
		if logDir == "" {
			return
		}
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return
		}
		f, err := os.OpenFile(filepath.Join(logDir, "query.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return
		}
		logMu.Lock()
		if logOut == nil {
			logOut = f
		}
		logMu.Unlock()
	})
}

// SetLogOutput redirects the query log to w; nil disables it.
func SetLogOutput(w io.Writer) {
	logOnce.Do(func() {})
	logMu.Lock()
	logOut = w
	logMu.Unlock()
}

func logWrite(s string) {
	initLog()
	logMu.Lock()
	defer logMu.Unlock()
	if logOut != nil {
		io.WriteString(logOut, s) //nolint:errcheck
	}
}

const (
	ruleHeavy = "════════════════════════════════════════════════════════════════\n"
	ruleLight = "────────────────────────────────────────\n"
)

// LogQueryRequest logs an outbound query.
func LogQueryRequest(provider string, q Query) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	logWrite(fmt.Sprintf("\n"+ruleHeavy+"[REQUEST] %s  |  Provider: %s  |  Dialect: %s\n"+ruleHeavy+"%s\n"+ruleLight,
		ts, provider, q.dialect, q.Inline()))
}

// LogQueryResponse logs the answer or error of the preceding request.
func LogQueryResponse(answer string, err error) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	errStr := "(none)"
	if err != nil {
		errStr = err.Error()
	}
	logWrite(fmt.Sprintf("[RESPONSE] %s\nError: %s\n"+ruleLight+"Answer:\n%s\n"+ruleHeavy,
		ts, errStr, answer))
}
