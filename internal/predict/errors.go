package predict

// RequestError is a client fault: a missing or malformed field.
type RequestError struct {
	Msg string
	Err error
}

func (e *RequestError) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *RequestError) Unwrap() error { return e.Err }

// InferenceError is an internal fault raised by the model artifacts, such as a
// feature width the scaler or classifier was not fitted on.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string { return "inference failed: " + e.Err.Error() }

func (e *InferenceError) Unwrap() error { return e.Err }
