package rpc

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/synchronizer/bank"
	"xdao.co/synchronizer/program"
)

// Client talks to a Synchronizer gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client SynchronizerClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewSynchronizerClient(cc), Timeout: 0}, nil
}

// NewClient wraps an existing connection; useful with in-process listeners.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewSynchronizerClient(cc)}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Execute submits an envelope. It returns the snapshot CID of the resulting
// record, or cid.Undef when the service archived nothing.
func (c *Client) Execute(env bank.Envelope) (cid.Cid, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Execute(ctx, wrapperspb.Bytes(env.Encode()))
	if err != nil {
		return cid.Undef, programFromStatus(err)
	}
	s := reply.GetValue()
	if s == "" {
		return cid.Undef, nil
	}
	id, err := cid.Decode(s)
	if err != nil || !id.Defined() {
		return cid.Undef, program.NewError(program.CodeInvalidAccountData)
	}
	return id, nil
}

// Record fetches a record account's raw bytes.
func (c *Client) Record(key program.PublicKey) ([]byte, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Record(ctx, wrapperspb.String(key.String()))
	if err != nil {
		return nil, programFromStatus(err)
	}
	return reply.GetValue(), nil
}

// Balance fetches a token account's balance.
func (c *Client) Balance(key program.PublicKey) (uint64, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Balance(ctx, wrapperspb.String(key.String()))
	if err != nil {
		return 0, programFromStatus(err)
	}
	return reply.GetValue(), nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
