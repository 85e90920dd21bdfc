// Package nftprogramtest provides a testify mock of nftprogram.Program.
package nftprogramtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sinbandera-io/vehicular-control/internal/nftprogram"
)

type MockProgram struct {
	mock.Mock
}

var _ nftprogram.Program = (*MockProgram)(nil)

func (m *MockProgram) UploadMetadata(ctx context.Context, md nftprogram.Metadata) (nftprogram.MetadataUpload, error) {
	args := m.Called(ctx, md)
	return args.Get(0).(nftprogram.MetadataUpload), args.Error(1)
}

func (m *MockProgram) CreateNFT(ctx context.Context, p nftprogram.CreateParams, opt nftprogram.CreateOptions) (nftprogram.CreateResult, error) {
	args := m.Called(ctx, p, opt)
	return args.Get(0).(nftprogram.CreateResult), args.Error(1)
}
