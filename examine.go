package quarry

import (
	"go.uber.org/zap"
)

// Examine logs every constituent of a collection at debug level, with the
// result of the identity classification id unless it is NullID
func Examine[O Object](logger *zap.Logger, c *Collection, kind Kind[O], name string, id ID) {
	logger.Debug("Collection", zap.String("name", name), zap.Int("size", c.Size()))
	for i, o := range Constituents(c, kind) {
		fields := []zap.Field{
			zap.String("name", name),
			zap.Int("constituent", i),
			zap.String("kind", o.Name()),
			zap.Uint16("rawIndex", uint16(o.RawIndex())),
			zap.Float64("pt", o.Pt()),
			zap.Float64("eta", o.Eta()),
			zap.Float64("phi", o.Phi()),
		}
		if id != NullID {
			fields = append(fields, zap.Stringer("id", id), zap.Bool("pass", o.PassUserID(id)))
		}
		logger.Debug("Constituent", fields...)
	}
}
