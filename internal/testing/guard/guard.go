package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CLASSPULSE_TEST_MODE") == "" {
			_ = os.Setenv("CLASSPULSE_TEST_MODE", "1")
		}
	})
}
