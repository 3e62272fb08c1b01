package models

// ConversionResult is the parsed body of a successful upstream
// conversion response. TextLength is the number of characters the
// converter extracted from the PDF; Filename names the generated
// artifact on the converter and is used verbatim to build the
// download path.
type ConversionResult struct {
	Success    bool   `json:"success"`
	TextLength int    `json:"text_length"`
	Filename   string `json:"filename"`
	Message    string `json:"message,omitempty"`
}
