package log

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
)

// Flaw renders err into the event. Flaw errors are expanded into their
// records and stack trace; any other error is attached with Err.
//
//	logger.Error().Func(log.Flaw(err)).Msg("Failed to extract archive")
func Flaw(err error) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
			e.Dict(
				"error",
				zerolog.
					Dict().
					Str("message", flawErr.Inner).
					Str("type_name", flawErr.InnerType),
			)

			records := zerolog.Arr()
			for _, v := range flawErr.Records {
				b, err := json.MarshalWithOption(v.Payload, json.UnorderedMap(), json.DisableHTMLEscape())
				if err != nil {
					records.Dict(zerolog.Dict().Str("function", v.Function).Str("payload", fmt.Sprintf("%#+v", v.Payload)))
					continue
				}
				records.Dict(zerolog.Dict().Str("function", v.Function).RawJSON("payload", b))
			}
			e.Array("records", records)

			stackTraces := zerolog.Arr()
			for _, v := range flawErr.StackTrace {
				stackTraces.Dict(zerolog.Dict().Str("location", fmt.Sprintf("%s:%d", v.File, v.Line)).Str("function", v.Function))
			}
			e.Array("stack_traces", stackTraces)
			return
		}
		e.Err(err)
	}
}
