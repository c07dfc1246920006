package table

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ValueKey converts a cell value into a canonical string used for distinct
// counting.
//
// The key carries a type prefix so int64(1), float64(1) and "1" stay
// distinct. nil and NaN get fixed keys, which makes every NaN equal to every
// other NaN for counting purposes.
func ValueKey(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case string:
		return "s:" + t
	case []byte:
		return "s:" + string(t)
	case bool:
		return "b:" + strconv.FormatBool(t)
	case int:
		return "i:" + strconv.FormatInt(int64(t), 10)
	case int32:
		return "i:" + strconv.FormatInt(int64(t), 10)
	case int64:
		return "i:" + strconv.FormatInt(t, 10)
	case uint64:
		return "u:" + strconv.FormatUint(t, 10)
	case float32:
		return floatKey(float64(t))
	case float64:
		return floatKey(t)
	case time.Time:
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

func floatKey(f float64) string {
	if math.IsNaN(f) {
		return "nan"
	}
	if f == 0 {
		return "f:0"
	}
	return "f:" + strconv.FormatFloat(f, 'g', -1, 64)
}
