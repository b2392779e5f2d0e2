// agent is a command-line exam agent for testing the gateway without a real
// capture stack. It reads stdin lines and forwards them as telemetry:
//
//	paste: <text>        clipboard capture
//	window: <title>      foreground window title
//	drag: <src> -> <dst> drag and drop observation
//	anything else        appended to the keystroke buffer
//
// Buffered keystrokes are flushed on an interval, like the desktop monitor.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/Divyam-11/ExamJudge/internal/agent"
	"github.com/Divyam-11/ExamJudge/internal/domain"
)

func main() {
	server := flag.String("server", "http://127.0.0.1:5000/log", "Gateway /log endpoint")
	room := flag.String("room", "", "Exam room id (required)")
	name := flag.String("name", "", "Student display name (required)")
	enrollment := flag.String("enrollment", "", "Student enrollment id")
	section := flag.String("section", "", "Student subsection")
	interval := flag.Duration("interval", agent.DefaultFlushInterval, "Keystroke flush interval")
	flag.Parse()

	if *room == "" || *name == "" {
		log.Fatal("agent: -room and -name are required")
	}

	student := domain.Identity{
		DisplayName:  *name,
		EnrollmentID: *enrollment,
		Subsection:   *section,
	}
	client := agent.NewClient(*server, *room, student)
	monitor := agent.NewMonitor(client, *interval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	log.Printf("agent: reporting for %s in room %s to %s", student.PresenceString(), *room, *server)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "paste:"):
			content := strings.TrimSpace(strings.TrimPrefix(line, "paste:"))
			if err := client.ReportPaste(ctx, content); err != nil {
				log.Printf("agent: paste: %v", err)
			}
		case strings.HasPrefix(line, "window:"):
			title := strings.TrimSpace(strings.TrimPrefix(line, "window:"))
			if err := client.ReportWindowTitle(ctx, title); err != nil {
				log.Printf("agent: window: %v", err)
			}
		case strings.HasPrefix(line, "drag:"):
			src, dst, ok := strings.Cut(strings.TrimPrefix(line, "drag:"), "->")
			if !ok {
				log.Printf("agent: drag line needs '<src> -> <dst>'")
				continue
			}
			if err := client.ReportDragDrop(ctx, strings.TrimSpace(src), strings.TrimSpace(dst)); err != nil {
				log.Printf("agent: drag: %v", err)
			}
		default:
			monitor.RecordKeys(line)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("agent: stdin: %v", err)
	}

	// EOF: flush what is left and exit.
	cancel()
	<-done
}
