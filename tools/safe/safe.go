package safe

import (
	"fmt"

	"go.uber.org/zap"

	"linguachat/logger"
)

// Go starts a goroutine that recovers from panic, so one bad fan-out leg
// cannot crash the process.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.String("panic", fmt.Sprint(r)))
			}
		}()
		f()
	}()
}
