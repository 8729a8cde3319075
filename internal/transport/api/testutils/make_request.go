package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
)

type RequestOptions struct {
	headers  map[string]string
	clientIP string
}

// RequestArgs параметры запроса. Body, если задан, кодируется в JSON.
type RequestArgs struct {
	Router http.Handler
	Method string
	URL    string
	Body   any
}

func MakeRequest(args RequestArgs, opts ...func(*RequestOptions)) (*http.Response, error) {
	options := RequestOptions{
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(&options)
	}

	var body io.Reader
	if args.Body != nil {
		payload, err := json.Marshal(args.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %s", err.Error())
		}
		body = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(args.Method, args.URL, body)
	if args.Body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for k, v := range options.headers {
		request.Header.Set(k, v)
	}
	if options.clientIP != "" {
		request.RemoteAddr = options.clientIP + ":12345"
	}

	recorder := httptest.NewRecorder()

	args.Router.ServeHTTP(recorder, request)

	return recorder.Result(), nil
}

func WithHeader(name, value string) func(*RequestOptions) {
	return func(fn *RequestOptions) {
		fn.headers[name] = value
	}
}

// WithBearer добавляет заголовок Authorization с JWT. Пустой токен запрос не меняет.
func WithBearer(token string) func(*RequestOptions) {
	return func(fn *RequestOptions) {
		if token != "" {
			fn.headers["Authorization"] = "Bearer " + token
		}
	}
}

// WithClientIP задает адрес клиента, по которому считаются ошибки авторизации.
func WithClientIP(ip string) func(*RequestOptions) {
	return func(fn *RequestOptions) {
		fn.clientIP = ip
	}
}
