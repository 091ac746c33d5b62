package util

import (
	"github.com/mit-pdos/go-simplefs/internal/logger"
)

// Debug is the highest DPrintf level that is emitted. Level 0 messages are
// always emitted (at zap's debug level, so the logger config still gates them).
var Debug uint64 = 1

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		logger.Logger.Debugf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

func CloneByteSlice(s []byte) []byte {
	s2 := make([]byte, len(s))
	copy(s2, s)
	return s2
}
