package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey       = "tally"
	serviceName        = "tally.plugin.v1.TallyPlugin"
	jsonCodecName      = "json"
	methodGetMetadata  = "/" + serviceName + "/GetMetadata"
	methodListCommands = "/" + serviceName + "/ListCommands"
	methodExecute      = "/" + serviceName + "/Execute"
	methodPrepareTTY   = "/" + serviceName + "/PrepareTTY"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "TALLY_PLUGIN",
	MagicCookieValue: "tally",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type CommandDescriptor struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Kind            string `json:"kind"`
	InputSchemaJSON string `json:"input_schema_json"`
	TimeoutMS       int32  `json:"timeout_ms"`
}

type ListCommandsResponse struct {
	Commands []CommandDescriptor `json:"commands"`
}

type ExecuteContext struct {
	DataDir   string            `json:"data_dir"`
	TagName   string            `json:"tag_name"`
	SessionID string            `json:"session_id"`
	Cwd       string            `json:"cwd"`
	Env       map[string]string `json:"env"`
}

type ExecuteRequest struct {
	CommandID string         `json:"command_id"`
	InputJSON string         `json:"input_json"`
	Payload   string         `json:"payload"`
	Context   ExecuteContext `json:"context"`
}

type ExecuteResponse struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	OutputJSON string `json:"output_json"`
	ExitCode   int32  `json:"exit_code"`
}

type PrepareTTYRequest struct {
	CommandID string         `json:"command_id"`
	InputJSON string         `json:"input_json"`
	Context   ExecuteContext `json:"context"`
}

type PrepareTTYResponse struct {
	Argv []string          `json:"argv"`
	Cwd  string            `json:"cwd"`
	Env  map[string]string `json:"env"`
}

type TallyPluginServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	ListCommands(ctx context.Context, in *Empty) (*ListCommandsResponse, error)
	Execute(ctx context.Context, in *ExecuteRequest) (*ExecuteResponse, error)
	PrepareTTY(ctx context.Context, in *PrepareTTYRequest) (*PrepareTTYResponse, error)
}

type TallyPluginClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	ListCommands(ctx context.Context) (*ListCommandsResponse, error)
	Execute(ctx context.Context, in *ExecuteRequest) (*ExecuteResponse, error)
	PrepareTTY(ctx context.Context, in *PrepareTTYRequest) (*PrepareTTYResponse, error)
}

type tallyPluginClient struct {
	conn *grpc.ClientConn
}

func NewTallyPluginClient(conn *grpc.ClientConn) TallyPluginClient {
	return &tallyPluginClient{conn: conn}
}

func invoke[Resp any](ctx context.Context, conn *grpc.ClientConn, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := conn.Invoke(ctx, method, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tallyPluginClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	return invoke[Metadata](ctx, c.conn, methodGetMetadata, &Empty{})
}

func (c *tallyPluginClient) ListCommands(ctx context.Context) (*ListCommandsResponse, error) {
	return invoke[ListCommandsResponse](ctx, c.conn, methodListCommands, &Empty{})
}

func (c *tallyPluginClient) Execute(ctx context.Context, in *ExecuteRequest) (*ExecuteResponse, error) {
	return invoke[ExecuteResponse](ctx, c.conn, methodExecute, in)
}

func (c *tallyPluginClient) PrepareTTY(ctx context.Context, in *PrepareTTYRequest) (*PrepareTTYResponse, error) {
	return invoke[PrepareTTYResponse](ctx, c.conn, methodPrepareTTY, in)
}

func unaryHandler[Req any](method string, call func(context.Context, *Req) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*Req)
			if !ok {
				return nil, fmt.Errorf("invalid request type")
			}
			return call(ctx, typed)
		})
	}
}

func RegisterTallyPluginServer(server grpc.ServiceRegistrar, impl TallyPluginServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*TallyPluginServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: unaryHandler(methodGetMetadata, func(ctx context.Context, in *Empty) (any, error) {
					return impl.GetMetadata(ctx, in)
				}),
			},
			{
				MethodName: "ListCommands",
				Handler: unaryHandler(methodListCommands, func(ctx context.Context, in *Empty) (any, error) {
					return impl.ListCommands(ctx, in)
				}),
			},
			{
				MethodName: "Execute",
				Handler: unaryHandler(methodExecute, func(ctx context.Context, in *ExecuteRequest) (any, error) {
					return impl.Execute(ctx, in)
				}),
			},
			{
				MethodName: "PrepareTTY",
				Handler: unaryHandler(methodPrepareTTY, func(ctx context.Context, in *PrepareTTYRequest) (any, error) {
					return impl.PrepareTTY(ctx, in)
				}),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/plugin-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl TallyPluginServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterTallyPluginServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewTallyPluginClient(conn), nil
}

func PluginMap(impl TallyPluginServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
