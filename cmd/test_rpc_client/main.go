package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	grpc_pool "github.com/JoeShih716/go-mem-bank/pkg/grpc"
	"github.com/JoeShih716/go-mem-bank/pkg/money"
)

var (
	title = color.New(color.FgCyan, color.Bold)
	ok    = color.New(color.FgGreen)
	fail  = color.New(color.FgRed)
)

func main() {
	addr := flag.String("addr", "localhost:50051", "core server address")
	load := flag.Int("load", 0, "number of concurrent deposits to send after the scenario (0 = skip)")
	concurrency := flag.Int("concurrency", 100, "max in-flight requests during the load phase")
	flag.Parse()

	var rpcCount atomic.Int64
	pool := grpc_pool.NewPool(grpc_pool.WithInterceptor(countCalls(&rpcCount)))
	defer pool.Close()

	conn, err := pool.Get(*addr)
	if err != nil {
		fail.Fprintf(os.Stderr, "did not connect: %v\n", err)
		os.Exit(1)
	}
	client := grpc_adapter.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	alice, err := runScenario(ctx, client)
	if err != nil {
		fail.Fprintf(os.Stderr, "scenario failed: %v\n", err)
		os.Exit(1)
	}

	if *load > 0 {
		runLoad(ctx, client, alice, *load, *concurrency)
	}
	fmt.Printf("%d RPCs sent\n", rpcCount.Load())
}

// runScenario 走一遍開戶、存款、加收款人、轉帳與查詢
func runScenario(ctx context.Context, c *grpc_adapter.Client) (domain.AccountID, error) {
	title.Println("== scenario ==")

	alice, err := c.CreateAccount(ctx, "Alice", "100")
	if err != nil {
		return 0, err
	}
	ok.Printf("created %s (%s) balance %s\n", alice.Name, alice.ID, money.Format(alice.Balance, domain.CurrencyPlaces))

	balance, err := c.Deposit(ctx, alice.ID, "50")
	if err != nil {
		return 0, err
	}
	ok.Printf("deposit 50.00 -> %s\n", money.Format(balance, domain.CurrencyPlaces))

	bob, err := c.CreateAccount(ctx, "Bob", "")
	if err != nil {
		return 0, err
	}
	ok.Printf("created %s (%s)\n", bob.Name, bob.ID)

	// 還沒加收款人就轉帳，預期失敗
	if err := c.Transfer(ctx, alice.ID, bob.ID, "10"); !errors.Is(err, domain.ErrPayeeNotRegistered) {
		return 0, fmt.Errorf("expected payee not registered, got %v", err)
	}
	ok.Println("transfer before add payee rejected")

	if err := c.AddPayee(ctx, alice.ID, bob.ID); err != nil {
		return 0, err
	}
	if err := c.Transfer(ctx, alice.ID, bob.ID, "75"); err != nil {
		return 0, err
	}
	ok.Println("transfer 75.00 to Bob")

	if err := c.Transfer(ctx, alice.ID, bob.ID, "1000"); !errors.Is(err, domain.ErrInsufficientFunds) {
		return 0, fmt.Errorf("expected insufficient funds, got %v", err)
	}
	ok.Println("overdraft rejected")

	for _, id := range []domain.AccountID{alice.ID, bob.ID} {
		details, err := c.GetDetails(ctx, id)
		if err != nil {
			return 0, err
		}
		history, err := c.GetHistory(ctx, id)
		if err != nil {
			return 0, err
		}
		title.Printf("%s (%s) balance %s payees %v\n", details.Name, details.ID, money.Format(details.Balance, domain.CurrencyPlaces), details.Payees)
		if history.IsEmpty() {
			fmt.Println("  no transactions")
		}
		for _, rec := range history {
			fmt.Printf("  %s  %-12s %10s  %s\n", rec.Timestamp.Format(domain.TimestampLayout), rec.Kind, money.Format(rec.Amount, domain.CurrencyPlaces), rec.Description)
		}
	}
	return alice.ID, nil
}

// runLoad 對同一個帳戶並發存款，回報 TPS
func runLoad(ctx context.Context, c *grpc_adapter.Client, id domain.AccountID, total, concurrency int) {
	title.Printf("== load: %d deposits, concurrency %d ==\n", total, concurrency)
	if concurrency <= 0 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	var failed atomic.Int64
	sem := make(chan struct{}, concurrency)
	start := time.Now()

	for i := 0; i < total; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := c.Deposit(ctx, id, "0.01"); err != nil {
				failed.Add(1)
				if idx%10000 == 0 {
					fail.Printf("deposit %d failed: %v\n", idx, err)
				}
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	ok.Printf("completed %d requests in %v (%d failed)\n", total, elapsed, failed.Load())
	fmt.Printf("TPS: %.2f\n", float64(total)/elapsed.Seconds())
}

// countCalls 為每個 RPC 計數並帶上請求編號
func countCalls(n *atomic.Int64) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		n.Add(1)
		ctx = metadata.AppendToOutgoingContext(ctx, grpc_adapter.RequestIDKey, uuid.NewString())
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
