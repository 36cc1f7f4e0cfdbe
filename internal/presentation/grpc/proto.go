package grpc

// Service definition for underwriting.v1.UnderwritingService. Messages are the
// application DTOs carried by the JSON codec, so no generated code is needed.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/underwriting/internal/application/dto"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "underwriting.v1.UnderwritingService"

// FullMethod returns the "/service/method" path used by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// UnderwritingServiceServer is the server API for UnderwritingService.
type UnderwritingServiceServer interface {
	Evaluate(context.Context, *dto.EvaluateRequest) (*dto.EvaluationResponse, error)
	EvaluateBorrower(context.Context, *dto.EvaluateBorrowerRequest) (*dto.EvaluationResponse, error)
	SubmitApplication(context.Context, *dto.SubmitApplicationRequest) (*dto.LoanApplicationResponse, error)
	GetApplication(context.Context, *dto.GetApplicationRequest) (*dto.LoanApplicationResponse, error)
	DecideApplication(context.Context, *dto.DecideApplicationRequest) (*dto.LoanApplicationResponse, error)
	DisburseLoan(context.Context, *dto.DisburseLoanRequest) (*dto.DisbursementResponse, error)
	MakePayment(context.Context, *dto.MakePaymentRequest) (*dto.PaymentResponse, error)
	GetLoan(context.Context, *dto.GetLoanRequest) (*dto.LoanAccountResponse, error)
	SweepOverdue(context.Context, *dto.SweepOverdueRequest) (*dto.SweepOverdueResponse, error)
	mustEmbedUnimplementedUnderwritingServiceServer()
}

// UnimplementedUnderwritingServiceServer provides forward-compatible defaults.
type UnimplementedUnderwritingServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedUnderwritingServiceServer) Evaluate(context.Context, *dto.EvaluateRequest) (*dto.EvaluationResponse, error) {
	return nil, unimplemented("Evaluate")
}
func (UnimplementedUnderwritingServiceServer) EvaluateBorrower(context.Context, *dto.EvaluateBorrowerRequest) (*dto.EvaluationResponse, error) {
	return nil, unimplemented("EvaluateBorrower")
}
func (UnimplementedUnderwritingServiceServer) SubmitApplication(context.Context, *dto.SubmitApplicationRequest) (*dto.LoanApplicationResponse, error) {
	return nil, unimplemented("SubmitApplication")
}
func (UnimplementedUnderwritingServiceServer) GetApplication(context.Context, *dto.GetApplicationRequest) (*dto.LoanApplicationResponse, error) {
	return nil, unimplemented("GetApplication")
}
func (UnimplementedUnderwritingServiceServer) DecideApplication(context.Context, *dto.DecideApplicationRequest) (*dto.LoanApplicationResponse, error) {
	return nil, unimplemented("DecideApplication")
}
func (UnimplementedUnderwritingServiceServer) DisburseLoan(context.Context, *dto.DisburseLoanRequest) (*dto.DisbursementResponse, error) {
	return nil, unimplemented("DisburseLoan")
}
func (UnimplementedUnderwritingServiceServer) MakePayment(context.Context, *dto.MakePaymentRequest) (*dto.PaymentResponse, error) {
	return nil, unimplemented("MakePayment")
}
func (UnimplementedUnderwritingServiceServer) GetLoan(context.Context, *dto.GetLoanRequest) (*dto.LoanAccountResponse, error) {
	return nil, unimplemented("GetLoan")
}
func (UnimplementedUnderwritingServiceServer) SweepOverdue(context.Context, *dto.SweepOverdueRequest) (*dto.SweepOverdueResponse, error) {
	return nil, unimplemented("SweepOverdue")
}
func (UnimplementedUnderwritingServiceServer) mustEmbedUnimplementedUnderwritingServiceServer() {}

// RegisterUnderwritingServiceServer registers srv with s.
func RegisterUnderwritingServiceServer(s grpclib.ServiceRegistrar, srv UnderwritingServiceServer) {
	s.RegisterService(&underwritingServiceDesc, srv)
}

var underwritingServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UnderwritingServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unaryMethod("Evaluate", UnderwritingServiceServer.Evaluate),
		unaryMethod("EvaluateBorrower", UnderwritingServiceServer.EvaluateBorrower),
		unaryMethod("SubmitApplication", UnderwritingServiceServer.SubmitApplication),
		unaryMethod("GetApplication", UnderwritingServiceServer.GetApplication),
		unaryMethod("DecideApplication", UnderwritingServiceServer.DecideApplication),
		unaryMethod("DisburseLoan", UnderwritingServiceServer.DisburseLoan),
		unaryMethod("MakePayment", UnderwritingServiceServer.MakePayment),
		unaryMethod("GetLoan", UnderwritingServiceServer.GetLoan),
		unaryMethod("SweepOverdue", UnderwritingServiceServer.SweepOverdue),
	},
	Streams: []grpclib.StreamDesc{},
}

func unaryMethod[Req, Resp any](
	name string,
	call func(UnderwritingServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodDesc {
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(UnderwritingServiceServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(UnderwritingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Client calls UnderwritingService over a connection using the JSON codec.
type Client struct {
	cc grpclib.ClientConnInterface
}

func NewClient(cc grpclib.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, c *Client, method string, in *Req, opts ...grpclib.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Evaluate(ctx context.Context, in *dto.EvaluateRequest, opts ...grpclib.CallOption) (*dto.EvaluationResponse, error) {
	return invoke[dto.EvaluateRequest, dto.EvaluationResponse](ctx, c, "Evaluate", in, opts...)
}

func (c *Client) EvaluateBorrower(ctx context.Context, in *dto.EvaluateBorrowerRequest, opts ...grpclib.CallOption) (*dto.EvaluationResponse, error) {
	return invoke[dto.EvaluateBorrowerRequest, dto.EvaluationResponse](ctx, c, "EvaluateBorrower", in, opts...)
}

func (c *Client) SubmitApplication(ctx context.Context, in *dto.SubmitApplicationRequest, opts ...grpclib.CallOption) (*dto.LoanApplicationResponse, error) {
	return invoke[dto.SubmitApplicationRequest, dto.LoanApplicationResponse](ctx, c, "SubmitApplication", in, opts...)
}

func (c *Client) GetApplication(ctx context.Context, in *dto.GetApplicationRequest, opts ...grpclib.CallOption) (*dto.LoanApplicationResponse, error) {
	return invoke[dto.GetApplicationRequest, dto.LoanApplicationResponse](ctx, c, "GetApplication", in, opts...)
}

func (c *Client) DecideApplication(ctx context.Context, in *dto.DecideApplicationRequest, opts ...grpclib.CallOption) (*dto.LoanApplicationResponse, error) {
	return invoke[dto.DecideApplicationRequest, dto.LoanApplicationResponse](ctx, c, "DecideApplication", in, opts...)
}

func (c *Client) DisburseLoan(ctx context.Context, in *dto.DisburseLoanRequest, opts ...grpclib.CallOption) (*dto.DisbursementResponse, error) {
	return invoke[dto.DisburseLoanRequest, dto.DisbursementResponse](ctx, c, "DisburseLoan", in, opts...)
}

func (c *Client) MakePayment(ctx context.Context, in *dto.MakePaymentRequest, opts ...grpclib.CallOption) (*dto.PaymentResponse, error) {
	return invoke[dto.MakePaymentRequest, dto.PaymentResponse](ctx, c, "MakePayment", in, opts...)
}

func (c *Client) GetLoan(ctx context.Context, in *dto.GetLoanRequest, opts ...grpclib.CallOption) (*dto.LoanAccountResponse, error) {
	return invoke[dto.GetLoanRequest, dto.LoanAccountResponse](ctx, c, "GetLoan", in, opts...)
}

func (c *Client) SweepOverdue(ctx context.Context, in *dto.SweepOverdueRequest, opts ...grpclib.CallOption) (*dto.SweepOverdueResponse, error) {
	return invoke[dto.SweepOverdueRequest, dto.SweepOverdueResponse](ctx, c, "SweepOverdue", in, opts...)
}
