package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"example.com/radgate/internal/capture"
	"example.com/radgate/internal/common"
	"example.com/radgate/internal/frame"
	"example.com/radgate/internal/icd"
	"example.com/radgate/internal/render"
	"example.com/radgate/internal/report"
	"example.com/radgate/internal/stats"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "decode":
		decodeCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "digest":
		digestCmd(os.Args[2:])
	case "stats":
		statsCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`radgatectl %s (built %s) <command> [options]

Commands:
  decode  --in <capture> [--hex] [--failures-only]
  report  --in <capture> [--json <session.json>] [--pdf <session.pdf>]
  digest  --in <file>
  stats   [--addr <http://host:port>]
`, version, buildDate)
}

// replay feeds every recorded chunk through per-transport assemblers, exactly
// as the live receivers would, and hands each outcome to fn.
func replay(path string, registry *icd.Registry, maxFrame int, fn frame.Sink) error {
	assemblers := map[icd.Transport]*frame.Assembler{
		icd.TransportStream:   frame.NewAssembler(icd.TransportStream, registry, maxFrame, fn),
		icd.TransportDatagram: frame.NewAssembler(icd.TransportDatagram, registry, maxFrame, fn),
	}
	err := capture.Replay(path, func(transport icd.Transport, data []byte, arrival time.Time, addr string) error {
		asm, ok := assemblers[transport]
		if !ok {
			return fmt.Errorf("capture record with unknown transport %d", transport)
		}
		asm.Deliver(data, arrival, addr)
		return nil
	})
	if err != nil {
		return err
	}
	assemblers[icd.TransportStream].Flush()
	return nil
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	in := fs.String("in", "", "input capture file")
	hexDump := fs.Bool("hex", false, "include a hex dump of every frame")
	failuresOnly := fs.Bool("failures-only", false, "print only rejected frames")
	maxFrame := fs.Int("max-frame", frame.DefaultMaxFrame, "stream framing ceiling in bytes")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}

	aggregator := stats.New()
	sink := func(o icd.DecodeOutcome) {
		aggregator.Record(o)
		if *failuresOnly && o.OK() {
			return
		}
		fmt.Println(render.Outcome(o, *hexDump))
	}
	if err := replay(*in, icd.NewRegistry(), *maxFrame, sink); err != nil {
		common.Fatalf("replay %s: %v", *in, err)
	}
	fmt.Println(render.Statistics(aggregator.Snapshot()))
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "input capture file")
	jsonOut := fs.String("json", "session.json", "session report JSON output")
	pdfOut := fs.String("pdf", "", "session report PDF output (optional)")
	maxFrame := fs.Int("max-frame", frame.DefaultMaxFrame, "stream framing ceiling in bytes")
	maxFindings := fs.Int("max-findings", 100, "cap on rejected frames listed in the report")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}

	aggregator := stats.New()
	var findings []report.Finding
	sink := func(o icd.DecodeOutcome) {
		aggregator.Record(o)
		if o.Failure != nil && len(findings) < *maxFindings {
			findings = append(findings, report.NewFinding(o))
		}
	}
	if err := replay(*in, icd.NewRegistry(), *maxFrame, sink); err != nil {
		common.Fatalf("replay %s: %v", *in, err)
	}

	digest, size, err := common.Sha256OfFile(*in)
	if err != nil {
		common.Fatalf("digest %s: %v", *in, err)
	}
	sess := report.Build(*in, digest, size, aggregator.Snapshot(), findings)
	if err := report.SaveJSON(sess, *jsonOut); err != nil {
		common.Fatalf("write %s: %v", *jsonOut, err)
	}
	fmt.Printf("wrote %s\n", *jsonOut)
	if *pdfOut != "" {
		if err := report.SavePDF(sess, *pdfOut); err != nil {
			common.Fatalf("write %s: %v", *pdfOut, err)
		}
		fmt.Printf("wrote %s\n", *pdfOut)
	}
}

func digestCmd(args []string) {
	fs := flag.NewFlagSet("digest", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	digest, size, err := common.Sha256OfFile(*in)
	if err != nil {
		common.Fatalf("digest %s: %v", *in, err)
	}
	fmt.Printf("sha256: %s\nsize:   %d bytes\n", digest, size)
}

func statsCmd(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	addr := fs.String("addr", "http://127.0.0.1:8080", "radgated base address")
	fs.Parse(args)

	resp, err := http.Get(*addr + "/stats")
	if err != nil {
		common.Fatalf("fetch stats: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		common.Fatalf("fetch stats: %s", resp.Status)
	}
	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		common.Fatalf("read stats: %v", err)
	}
}
