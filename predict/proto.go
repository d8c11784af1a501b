package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Predictor represents the remote character recognition service.
type Predictor interface {
	// Predict classifies the image in req.
	Predict(ctx context.Context, req *Request) (*Response, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, req *Request) (*Response, error)

func (f PredictorFunc) Predict(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

type Request struct {
	// Image is a data URI, e.g. "data:image/png;base64,...".
	Image string `json:"image"`
}

type Response struct {
	Prediction *Label `json:"prediction"`
}

// Label is a predicted class. The service may send it as a JSON string or
// a JSON number; numbers are kept in their shortest decimal form.
type Label string

func (l *Label) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("empty label")
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		if i, err := n.Int64(); err == nil {
			*l = Label(strconv.FormatInt(i, 10))
			return nil
		}
		f, err := n.Float64()
		if err != nil {
			return err
		}
		*l = Label(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	default:
		return fmt.Errorf("label must be a string or a number, got %s", b)
	}
}

func (l Label) String() string { return string(l) }
