package httpd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/frankli0324/go-httpd/internal/model"
)

func ExampleServer() {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		fmt.Println(err)
		return
	}
	srv := &Server{Handler: Routes(MemoryStore())}
	go srv.Serve(context.Background(), ln)
	defer srv.Shutdown(context.Background())

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer conn.Close()
	io.WriteString(conn, "GET /echo/abc HTTP/1.1\r\nConnection: close\r\n\r\n")

	b, _ := io.ReadAll(bufio.NewReader(conn))
	fmt.Println(strings.ReplaceAll(string(b), "\r\n", "|"))
	// Output: HTTP/1.1 200 OK|Content-Type: text/plain|Content-Length: 3|Connection: close||abc
}

func ExampleRouter() {
	r := NewRouter()
	r.GET("/hello/*", func(ctx context.Context, req *Request) *Response {
		return model.Text(model.StatusOK, "hi "+req.HeaderValue("User-Agent"))
	})

	h := model.NewHeader()
	h.Add("User-Agent", "curl/8.4.0")
	resp := r.ServeHTTP(context.Background(), model.NewRequest("GET", "/hello/x", model.ProtoHTTP11, h, nil))
	fmt.Println(resp.Status, string(resp.Body))
	// Output: 200 hi curl/8.4.0
}
