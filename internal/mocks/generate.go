// Package mocks provides gomock implementations of the directory and session ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockUserStore(ctrl)
//	store.EXPECT().FindUserByID(gomock.Any(), "u-1").Return(user, nil)
package mocks

// Generate mocks for the user directory and session boundaries from internal/ports:
// UserStore (FindUserByEmail, FindUserByID, Ping), Pinger (Ping), SessionProvider (GetSession)
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/target/onboard-admin/internal/ports UserStore,Pinger,SessionProvider
