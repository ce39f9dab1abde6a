package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/danmuck/liveurl/internal/logging"
	"github.com/danmuck/liveurl/internal/protocol"
)

// liveurlctl drives the navigation service from the command line:
//
//	liveurlctl create [-session id] [url]
//	liveurlctl get|instructions|delete -session id
//	liveurlctl list
//	liveurlctl patch|navigate -session id [-replace] <target>
//	liveurlctl redirect -session id [-external] <target>
type app struct {
	addr    string
	session string
	client  *http.Client
}

func main() {
	var (
		addr     string
		session  string
		replace  bool
		external bool
		frame    bool
	)
	flag.StringVar(&addr, "addr", "http://127.0.0.1:9400", "liveurld base address")
	flag.StringVar(&session, "session", "", "session id")
	flag.BoolVar(&replace, "replace", false, "replace the history entry instead of pushing")
	flag.BoolVar(&external, "external", false, "redirect target is outside the application")
	flag.BoolVar(&frame, "frame", false, "send navigation as a binary frame")
	flag.Parse()

	logging.ConfigureRuntime()
	log := logging.Component("liveurlctl")

	a := &app{
		addr:    strings.TrimRight(addr, "/"),
		session: session,
		client:  &http.Client{Timeout: 5 * time.Second},
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch cmd := args[0]; cmd {
	case "create":
		url := ""
		if len(args) > 1 {
			url = args[1]
		}
		err = a.create(url)
	case "list":
		err = a.getJSON("/v1/sessions")
	case "get":
		err = a.withSession(func(id string) error {
			return a.getJSON("/v1/sessions/" + id)
		})
	case "instructions":
		err = a.withSession(func(id string) error {
			return a.getJSON("/v1/sessions/" + id + "/instructions")
		})
	case "delete":
		err = a.withSession(func(id string) error {
			return a.doJSON(http.MethodDelete, "/v1/sessions/"+id, nil)
		})
	case "patch", "navigate", "redirect":
		if len(args) < 2 {
			err = fmt.Errorf("%s requires a target", cmd)
			break
		}
		err = a.withSession(func(id string) error {
			if frame {
				return a.navigateFrame(id, cmd, args[1], replace, external)
			}
			return a.navigate(id, cmd, args[1], replace, external)
		})
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("liveurlctl failed")
	}
}

func (a *app) withSession(run func(id string) error) error {
	if strings.TrimSpace(a.session) == "" {
		return errors.New("-session is required")
	}
	return run(a.session)
}

func (a *app) create(url string) error {
	body := map[string]string{}
	if a.session != "" {
		body["id"] = a.session
	}
	if url != "" {
		body["url"] = url
	}
	return a.doJSON(http.MethodPost, "/v1/sessions", body)
}

func (a *app) navigate(id, kind, target string, replace, external bool) error {
	return a.doJSON(http.MethodPost, "/v1/sessions/"+id+"/navigation", map[string]any{
		"kind":     kind,
		"target":   target,
		"replace":  replace,
		"external": external,
	})
}

// navigateFrame sends the same request over the binary endpoint and
// prints the decoded ack.
func (a *app) navigateFrame(id, kind, target string, replace, external bool) error {
	req := protocol.Request{
		SessionID: id,
		Target:    target,
		Replace:   replace,
		External:  external,
	}
	switch kind {
	case "patch":
		req.Kind = protocol.MsgPatch
	case "navigate":
		req.Kind = protocol.MsgNavigate
	case "redirect":
		req.Kind = protocol.MsgRedirect
	}

	frame, err := protocol.EncodeRequest(uint64(time.Now().UnixNano()), req)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := protocol.WriteFrame(&buf, frame, protocol.DefaultLimits()); err != nil {
		return err
	}

	resp, err := a.client.Post(a.addr+"/v1/sessions/"+id+"/navigation.frame", "application/octet-stream", &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	ackFrame, err := protocol.ReadFrame(resp.Body, protocol.DefaultLimits())
	if err != nil {
		return err
	}
	ack, err := protocol.DecodeAck(ackFrame)
	if err != nil {
		return err
	}
	fmt.Printf("session=%s status=%d code=%d message=%q\n", ack.SessionID, ack.Status, ack.Code, ack.Message)
	if ack.Status != protocol.StatusOK {
		return fmt.Errorf("request rejected: %s", ack.Message)
	}
	return nil
}

func (a *app) getJSON(path string) error {
	return a.doJSON(http.MethodGet, path, nil)
}

func (a *app) doJSON(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.addr+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		pretty.Write(raw)
	}
	fmt.Println(pretty.String())
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	return nil
}
