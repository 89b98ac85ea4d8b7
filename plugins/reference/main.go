package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pluginrpc "tally/internal/modules/plugin/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.Metadata, error) {
	return &pluginrpc.Metadata{
		Name:         "reference",
		Version:      "1.0.0",
		Capabilities: []string{"report", "export", "fullscreen_tty"},
	}, nil
}

func (s *server) ListCommands(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.ListCommandsResponse, error) {
	return &pluginrpc.ListCommandsResponse{Commands: []pluginrpc.CommandDescriptor{
		{ID: "summary", Title: "Tag summary", Description: "Prints headline numbers from a tag report", Kind: "report", TimeoutMS: 2000},
		{ID: "line-count", Title: "Line count", Description: "Counts rows in the CSV export", Kind: "export", TimeoutMS: 2000},
		{ID: "tty-echo", Title: "TTY Echo", Description: "Prepares a tty command", Kind: "fullscreen_tty", TimeoutMS: 1500},
	}}, nil
}

func (s *server) Execute(_ context.Context, in *pluginrpc.ExecuteRequest) (*pluginrpc.ExecuteResponse, error) {
	switch in.CommandID {
	case "summary":
		var report struct {
			TagName string `json:"TagName"`
			Stats   struct {
				Count int     `json:"Count"`
				Mean  float64 `json:"Mean"`
			} `json:"Stats"`
		}
		if err := json.Unmarshal([]byte(in.Payload), &report); err != nil {
			return &pluginrpc.ExecuteResponse{Stderr: "bad report payload: " + err.Error(), ExitCode: 1}, nil
		}
		out := fmt.Sprintf("%s: %d tracked days, mean %.1f min/day",
			report.TagName, report.Stats.Count, report.Stats.Mean/60000)
		raw, _ := json.Marshal(map[string]any{"tag": report.TagName, "days": report.Stats.Count})
		return &pluginrpc.ExecuteResponse{Stdout: out, OutputJSON: string(raw), ExitCode: 0}, nil
	case "line-count":
		rows := 0
		for _, line := range strings.Split(in.Payload, "\n") {
			if strings.TrimSpace(line) != "" {
				rows++
			}
		}
		if rows > 0 {
			rows-- // header
		}
		return &pluginrpc.ExecuteResponse{
			Stdout:     fmt.Sprintf("%d sessions in export", rows),
			OutputJSON: fmt.Sprintf(`{"sessions":%d}`, rows),
			ExitCode:   0,
		}, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", in.CommandID)
	}
}

func (s *server) PrepareTTY(_ context.Context, in *pluginrpc.PrepareTTYRequest) (*pluginrpc.PrepareTTYResponse, error) {
	if in.CommandID != "tty-echo" {
		return nil, fmt.Errorf("unknown tty command: %s", in.CommandID)
	}
	return &pluginrpc.PrepareTTYResponse{
		Argv: []string{"/bin/sh", "-lc", "echo tally-reference-tty"},
		Cwd:  in.Context.Cwd,
		Env: map[string]string{
			"TALLY_PLUGIN": "reference",
		},
	}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pluginrpc.HandshakeConfig,
		Plugins:         pluginrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
