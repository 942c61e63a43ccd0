package logger

import (
	"context"
	"fmt"
	"time"

	"go-wms/internal/config"
	"go-wms/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level      zapcore.Level
	Message    string
	ReportID   string
	TemplateID string
	Caller     string // Function name
}

// logRecord is the persisted shape in the service_logs collection
type logRecord struct {
	AppID      string    `bson:"app_id"`
	Level      string    `bson:"level"`
	Message    string    `bson:"message"`
	ReportID   string    `bson:"report_id,omitempty"`
	TemplateID string    `bson:"template_id,omitempty"`
	Caller     string    `bson:"caller,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	db      *mongo.Database
	logChan chan LogEntry
	appId   string
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		db:      mongodb.DB,
		logChan: make(chan LogEntry, 1000), // Buffer 1000 logs
		appId:   cfg.AppId,
	}

	// Start the background worker immediately
	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop log rather than block the API
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		rec := logRecord{
			AppID:      w.appId,
			Level:      entry.Level.String(),
			Message:    entry.Message,
			ReportID:   entry.ReportID,
			TemplateID: entry.TemplateID,
			Caller:     entry.Caller,
			CreatedAt:  time.Now().UTC(),
		}

		// Insert errors are swallowed to keep the app running
		w.db.Collection("service_logs").InsertOne(context.Background(), rec)
	}
}
