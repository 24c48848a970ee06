package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/grpc"
	memory_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/config"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/journal"
	"github.com/JoeShih716/go-mem-bank/pkg/logger"
)

// restorableLedger 兩種記憶體帳本都支援從 journal 重建
type restorableLedger interface {
	usecase.Ledger
	Restore(r io.Reader) error
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化 Logger
	logOutput := os.Stderr
	if cfg.Log.Output == config.LogOutputStdout {
		logOutput = os.Stdout
	}
	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: logOutput, Prefix: "core"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 初始化 Ledger
	ledger, err := newLedger(ctx, cfg, log)
	if err != nil {
		log.Error("failed to init ledger", "error", err)
		os.Exit(1)
	}

	// 4. 初始化 UseCase 與 gRPC Adapter
	coreUseCase := usecase.NewCoreUseCase(ledger, log)
	grpcServer := grpc_adapter.NewGrpcServer(coreUseCase)

	// 5. 啟動 gRPC Server
	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		log.Error("failed to listen", "addr", cfg.Server.Addr, "error", err)
		os.Exit(1)
	}

	s := grpc.NewServer(grpc_adapter.ServerOptions(log, cfg.Server.RequestTimeout)...)
	grpc_adapter.RegisterBankServiceServer(s, grpcServer)
	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpc_adapter.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)
	reflection.Register(s)

	go func() {
		log.Info("starting gRPC server", "addr", cfg.Server.Addr, "engine", cfg.Ledger.Engine)
		if err := s.Serve(lis); err != nil {
			log.Error("failed to serve", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	healthServer.Shutdown()
	gracefulStop(s, cfg.Server.ShutdownTimeout, log)
	// 所有 RPC 結束後才停止 LMAX 的寫入 goroutine
	cancel()
	if l, ok := ledger.(*memory_adapter.LMAXLedger); ok {
		<-l.Done()
	}
	log.Info("server exited")
}

// newLedger 依設定建立帳本，必要時先重放 journal 再開始接受請求
func newLedger(ctx context.Context, cfg config.Config, log *slog.Logger) (restorableLedger, error) {
	opts := []memory_adapter.Option{
		memory_adapter.WithMaxIDAttempts(cfg.Ledger.MaxIDAttempts),
		memory_adapter.WithBufferSize(cfg.Ledger.BufferSize),
		memory_adapter.WithLogger(log),
	}
	switch cfg.Journal.Output {
	case config.JournalOutputStdout:
		opts = append(opts, memory_adapter.WithJournal(journal.New(os.Stdout)))
	case config.JournalOutputStderr:
		opts = append(opts, memory_adapter.WithJournal(journal.New(os.Stderr)))
	}

	var ledger restorableLedger
	var lmax *memory_adapter.LMAXLedger
	switch cfg.Ledger.Engine {
	case config.LedgerEngineMutex:
		ledger = memory_adapter.NewMutexLedger(opts...)
	case config.LedgerEngineLMAX:
		lmax = memory_adapter.NewLMAXLedger(opts...)
		ledger = lmax
	default:
		return nil, fmt.Errorf("invalid ledger engine %q", cfg.Ledger.Engine)
	}

	if cfg.Journal.RestoreFrom != "" {
		if err := restoreFrom(ledger, cfg.Journal.RestoreFrom); err != nil {
			return nil, err
		}
		log.Info("ledger restored", "path", cfg.Journal.RestoreFrom)
	}
	if lmax != nil {
		lmax.Start(ctx)
	}
	return ledger, nil
}

func restoreFrom(ledger restorableLedger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()
	if err := ledger.Restore(f); err != nil {
		return fmt.Errorf("restore journal %s: %w", path, err)
	}
	return nil
}

// gracefulStop 等待進行中的 RPC 結束，超過 timeout 則強制關閉
func gracefulStop(s *grpc.Server, timeout time.Duration, log *slog.Logger) {
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		log.Warn("graceful stop timed out, forcing stop", "timeout", timeout)
		s.Stop()
	}
}
