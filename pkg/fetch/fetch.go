package fetch

import (
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0"

// Response is the subset of an HTTP response the loaders care about.
type Response struct {
	StatusCode int
	Body       string
	// Title is the <title> text when the body is an HTML document.
	Title string
}

// Client wraps a retryablehttp client configured for single-attempt GETs.
// A failed fetch is terminal for the item being fetched; nothing retries.
type Client struct {
	http *retryablehttp.Client
}

func NewClient() *Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.Logger = nil
	return &Client{http: c}
}

func (c *Client) Get(url string) (*Response, error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("Cache-Control", "no-transform")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	res := &Response{
		StatusCode: resp.StatusCode,
		Body:       string(bodyBytes),
	}

	if looksLikeHTML(res.Body) {
		if title, ok := htmlTitle(res.Body); ok {
			res.Title = strings.ToValidUTF8(strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", "")), "")
		}
	}

	return res, nil
}

func looksLikeHTML(body string) bool {
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	head = strings.ToLower(head)
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func htmlTitle(body string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	return traverse(doc)
}
