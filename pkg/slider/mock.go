package slider

import "context"

// MockTokenFail 交给 MockClient 时判定为失败
const MockTokenFail = "fail"

// MockClient 本地开发使用，非空 token 即通过
type MockClient struct{}

func (m *MockClient) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, ErrTokenRequired
	}
	return token != MockTokenFail, nil
}
