package httpserv_test

import (
	"log"
	"os"

	"github.com/zbqxyz/ESP-AT-Lib/httpserv"
	"github.com/zbqxyz/ESP-AT-Lib/mempool"
	"github.com/zbqxyz/ESP-AT-Lib/netconn"
	"github.com/zbqxyz/ESP-AT-Lib/staticfs"
)

func ExampleServer() {
	pool, err := mempool.MakeBufferPool(4*1024*1024, 2048)
	if err != nil {
		log.Fatal(err)
	}

	store := staticfs.NewStore()
	store.AddFile("/index.html", []byte("HTTP/1.1 200 OK\r\n\r\n<html>hello</html>"))
	store.SetNotFound("/404.html", []byte("HTTP/1.1 404 Not Found\r\n\r\nnot here"))

	l, err := netconn.Listen(":80", pool)
	if err != nil {
		log.Fatal(err)
	}

	srv := &httpserv.Server{
		Store:    store,
		ErrorLog: log.New(os.Stderr, "httpserv: ", log.LstdFlags),
	}
	log.Fatal(srv.Serve(l))
}
