// Package extract invokes the vision model against a normalized form image
// and enforces the structured-output contract on its reply.
package extract

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/supreme-sprinklers/backflow-cli/internal/capture"
	"github.com/supreme-sprinklers/backflow-cli/internal/model"
	"github.com/supreme-sprinklers/backflow-cli/internal/resilience"
	"github.com/supreme-sprinklers/backflow-cli/pkg/anthropic"
)

// ErrExtraction is the sentinel for any extraction failure: the external
// call failed, the reply was empty or unparseable, or nothing was extracted.
var ErrExtraction = eris.New("extraction failed")

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.1
)

// fencedJSON matches a code-fenced JSON object, with or without a language tag.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

// Extractor sends normalized images to the model under the fixed analysis
// prompt and projects the reply into typed record fields.
type Extractor struct {
	llm     anthropic.Client
	model   string
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// New creates an Extractor backed by the given client and model ID.
func New(llm anthropic.Client, modelID string) *Extractor {
	return &Extractor{
		llm:     llm,
		model:   modelID,
		limiter: rate.NewLimiter(1, 1),
		retry:   resilience.DefaultRetryConfig(),
	}
}

// reply mirrors the exact key set of the output contract. Unrecognized keys
// in the model's JSON are discarded by the decoder.
type reply struct {
	Address      string `json:"address"`
	DeviceType   string `json:"deviceType"`
	DeviceSize   string `json:"deviceSize"`
	SerialNumber string `json:"serialNumber"`
	Test1A       string `json:"test1A"`
	Test1B       string `json:"test1B"`
	Test2        string `json:"test2"`
	Test3        string `json:"test3"`
	City         string `json:"city"`
	Zip          string `json:"zip"`
}

// Extract sends the image plus the fixed instruction prompt to the model and
// parses the reply into extracted fields. Generation parameters are held
// low-temperature to favor literal transcription. It never returns a
// partially-parsed or best-guess record: any contract deviation fails with
// ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, img capture.NormalizedImage) (model.ExtractedFields, error) {
	var zero model.ExtractedFields

	if img.URI == "" {
		return zero, eris.Wrap(ErrExtraction, "extract: no image provided")
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return zero, eris.Wrap(err, "extract: rate limiter")
	}

	temp := defaultTemperature
	req := anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   defaultMaxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: analysisPrompt,
			Image: &anthropic.ImageAttachment{
				MediaType: img.MIMEType,
				Data:      img.Base64Data(),
			},
		}},
	}

	resp, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return e.llm.CreateMessage(ctx, req)
	})
	if err != nil {
		zap.L().Error("extraction call failed", zap.Error(err))
		return zero, eris.Wrap(ErrExtraction, "extract: model call")
	}
	resp.Usage.LogCost(e.model, "extract")

	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return zero, eris.Wrap(ErrExtraction, "extract: empty reply")
	}

	fields, err := parseReply(raw)
	if err != nil {
		zap.L().Error("failed to parse extraction reply",
			zap.Error(err),
			zap.String("reply_head", head(raw, 100)),
		)
		return zero, eris.Wrap(ErrExtraction, "extract: parse failure")
	}

	if fields.IsEmpty() {
		return zero, eris.Wrap(ErrExtraction, "extract: nothing extracted")
	}

	zap.L().Info("extracted form data",
		zap.Int("populated_fields", populatedCount(fields)),
	)
	return fields, nil
}

// parseReply strips any code-fence markup and decodes the reply under the
// fixed key contract, projecting the test2 marker into the NF flag.
func parseReply(raw string) (model.ExtractedFields, error) {
	cleaned := stripFences(raw)

	var r reply
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return model.ExtractedFields{}, eris.Wrap(err, "extract: unmarshal reply")
	}

	return model.ExtractedFields{
		Address:      r.Address,
		City:         r.City,
		Zip:          r.Zip,
		DeviceType:   r.DeviceType,
		DeviceSize:   r.DeviceSize,
		SerialNumber: r.SerialNumber,
		Test1A:       r.Test1A,
		Test1B:       r.Test1B,
		Test3:        r.Test3,
		SecondTestNF: strings.EqualFold(strings.TrimSpace(r.Test2), "NF"),
	}, nil
}

// stripFences removes leading/trailing code-fence markers around a JSON
// object. Replies without fences pass through untouched.
func stripFences(raw string) string {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func populatedCount(f model.ExtractedFields) int {
	n := 0
	for _, v := range f.Fields() {
		if v != "" {
			n++
		}
	}
	return n
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
