package tlog

import (
	"fmt"
	"time"

	"github.com/ridge/must/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The text encoder is zap's console encoder with a shorter timestamp and,
// optionally, colored levels. Field values stay JSON-encoded so that event
// dumps remain greppable.

func init() {
	for _, color := range []bool{false, true} {
		color := color
		must.OK(zap.RegisterEncoder(textEncoderName(color), func(cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
			return newTextEncoder(cfg, color), nil
		}))
	}
}

const textEncoderBaseName = "quarry-text"

func textEncoderName(color bool) string {
	return fmt.Sprintf("%s;color=%t", textEncoderBaseName, color)
}

func shortTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

func newTextEncoder(cfg zapcore.EncoderConfig, color bool) zapcore.Encoder {
	cfg.EncodeTime = shortTimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(cfg)
}
