package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cycle-dashboard/src/grpc_render"
	"cycle-dashboard/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// chartctl renders a chart through a running gRPC chart service.
func main() {
	addr := flag.String("addr", "127.0.0.1:9000", "gRPC chart service address")
	symbol := flag.String("symbol", models.DefaultSymbol, "symbol shown in the title")
	start := flag.String("start", "", "range start (YYYY-MM-DD or RFC3339)")
	end := flag.String("end", "", "range end (YYYY-MM-DD or RFC3339)")
	mode := flag.String("mode", "line", "display mode: line, vol or risk")
	out := flag.String("out", "", "PNG output file (default <SYMBOL>.png)")
	figure := flag.Bool("figure", false, "print the figure description as JSON instead of writing a PNG")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	req, err := structpb.NewStruct(map[string]interface{}{
		"symbol": *symbol,
		"start":  *start,
		"end":    *end,
		"mode":   *mode,
	})
	if err != nil {
		fail(err)
	}

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fail(err)
	}
	defer conn.Close()

	client := grpc_render.NewChartClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *figure {
		fig, err := client.RenderFigure(ctx, req)
		if err != nil {
			fail(err)
		}
		encoded, err := protojson.MarshalOptions{Multiline: true}.Marshal(fig)
		if err != nil {
			fail(err)
		}
		fmt.Println(string(encoded))
		return
	}

	img, err := client.RenderPNG(ctx, req)
	if err != nil {
		fail(err)
	}
	path := *out
	if path == "" {
		path = models.NormalizeSymbol(*symbol) + ".png"
	}
	if err := os.WriteFile(path, img.GetValue(), 0o644); err != nil {
		fail(err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", path, len(img.GetValue()))
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "chartctl: %v\n", err)
	os.Exit(1)
}
