package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"vigil/internal/common"
)

type NewClientOpts struct {
	ControllerUrl string
	BearerAuth    *NewClientBearerAuthOpts

	// Id will be included in the user-agent for identification
	Id string
}

type NewClientBearerAuthOpts struct {
	Token string
}

func NewClient(opts NewClientOpts) (*Client, error) {
	client := &Client{
		BearerAuth: opts.BearerAuth,
		HttpClient: &http.Client{},
		Id:         opts.Id,
	}

	controllerUrl, err := url.Parse(opts.ControllerUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse provided controllerUrl[%s]: %s", opts.ControllerUrl, err)
	}
	if controllerUrl.Scheme == "" {
		return nil, fmt.Errorf("failed to determine url scheme of controllerUrl[%s]", opts.ControllerUrl)
	}
	client.ControllerUrl = controllerUrl

	return client, nil
}

type Client struct {
	// ControllerUrl is the URL where the controller service is
	// accessible at
	ControllerUrl *url.URL
	BearerAuth    *NewClientBearerAuthOpts

	// HttpClient is the HTTP client
	HttpClient *http.Client

	// Id will be included in the user-agent for identification
	Id string
}

// doRequest executes one call against the controller and decodes the
// response envelope. `output` receives the envelope's data field when
// non-nil; a failure envelope is converted into the matching sentinel
// error.
func (c Client) doRequest(method, path string, input any, output any) (int, error) {
	controllerUrl := *c.ControllerUrl
	controllerUrl.Path = path

	var requestBody io.Reader
	if input != nil {
		requestBodyData, err := json.Marshal(input)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request data: %s", err)
		}
		requestBody = bytes.NewBuffer(requestBodyData)
	}
	httpRequest, err := http.NewRequest(method, controllerUrl.String(), requestBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create http request: %s", err)
	}
	httpRequest.Header.Add("Content-Type", "application/json")
	httpRequest.Header.Add("User-Agent", fmt.Sprintf("vigil/controller-sdk/client-%s", c.Id))
	if c.BearerAuth != nil {
		httpRequest.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.BearerAuth.Token))
	}

	httpResponse, err := c.HttpClient.Do(httpRequest)
	if err != nil {
		return 0, fmt.Errorf("failed to execute http request: %s", err)
	}
	defer httpResponse.Body.Close()
	responseBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return httpResponse.StatusCode, fmt.Errorf("failed to read response body: %s", err)
	}
	if httpResponse.StatusCode == http.StatusNoContent {
		return httpResponse.StatusCode, nil
	}

	var response common.HttpResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return httpResponse.StatusCode, fmt.Errorf("failed to parse response from controller service: %s", err)
	}
	if !response.Success {
		code, _ := response.Data.(string)
		return httpResponse.StatusCode, fmt.Errorf("%w: %s", errorByCode(code), response.Details)
	}
	if output != nil {
		responseData, err := json.Marshal(response.Data)
		if err != nil {
			return httpResponse.StatusCode, fmt.Errorf("failed to parse response data from controller service: %s", err)
		}
		if err := json.Unmarshal(responseData, output); err != nil {
			return httpResponse.StatusCode, fmt.Errorf("failed to unmarshal response data into output: %s", err)
		}
	}
	return httpResponse.StatusCode, nil
}
