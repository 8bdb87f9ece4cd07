package log

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Format 日志专用的轻量格式化, 只认 %v %d %s %f %t %q %T 和 %%:
//   - 参数依次替换占位符, 参数不足时占位符原样保留;
//   - 多出来的参数以空格拼接在末尾;
//   - 最后一个参数是 error 时, 以 " - 错误信息" 追加在末尾.
//
// 示例:
//
//	Format("timer %v fired", 3)                      // "timer 3 fired"
//	Format("slot %v", 1, 2)                          // "slot 1 2"
//	Format("failed %v", "run", errors.New("boom"))   // "failed run - boom"
//	Format("%v %v", 1)                               // "1 %v"
func Format(format string, args ...any) string {
	var tail error
	if n := len(args); n > 0 {
		if e, ok := args[n-1].(error); ok {
			tail = e
			args = args[:n-1]
		}
	}

	var b strings.Builder
	b.Grow(len(format) + len(args)*8)
	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		verb := format[i]
		if verb == '%' {
			b.WriteByte('%')
			continue
		}
		if next >= len(args) || !knownVerb(verb) {
			b.WriteByte('%')
			b.WriteByte(verb)
			continue
		}
		writeArg(&b, verb, args[next])
		next++
	}

	for _, arg := range args[next:] {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(toString(arg))
	}

	if tail != nil {
		b.WriteString(" - ")
		b.WriteString(tail.Error())
	}
	return b.String()
}

// FormatArgs 第一个参数作为格式串; 只有一个参数时原样输出
func FormatArgs(args ...any) string {
	switch len(args) {
	case 0:
		return ""
	case 1:
		return toString(args[0])
	default:
		return Format(toString(args[0]), args[1:]...)
	}
}

func knownVerb(verb byte) bool {
	switch verb {
	case 'v', 'd', 's', 'f', 't', 'q', 'T':
		return true
	}
	return false
}

func writeArg(b *strings.Builder, verb byte, arg any) {
	switch verb {
	case 'q':
		b.WriteString(strconv.Quote(toString(arg)))
	case 'T':
		if arg == nil {
			b.WriteString("<nil>")
			return
		}
		b.WriteString(reflect.TypeOf(arg).String())
	default:
		b.WriteString(toString(arg))
	}
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		if isNilPointer(v) {
			return "<nil>"
		}
		return v.String()
	default:
		if isNilPointer(val) {
			return "<nil>"
		}
		return fmt.Sprint(val)
	}
}

func isNilPointer(val any) bool {
	rv := reflect.ValueOf(val)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
