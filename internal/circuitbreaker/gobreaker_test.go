package circuitbreaker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"favorites-catalog/internal/circuitbreaker"
)

var errBackend = errors.New("backend down")

var _ = Describe("GoBreaker", func() {
	var (
		cb       *circuitbreaker.GoBreaker[int, string]
		calls    atomic.Int32
		failNext atomic.Bool
		hangNext atomic.Bool
		settings circuitbreaker.Settings
	)

	action := func(ctx context.Context, in int) (string, error) {
		calls.Add(1)
		if hangNext.Load() {
			<-ctx.Done()
			return "", ctx.Err()
		}
		if failNext.Load() {
			return "", errBackend
		}
		return "value", nil
	}

	BeforeEach(func() {
		calls.Store(0)
		failNext.Store(false)
		hangNext.Store(false)
		settings = circuitbreaker.Settings{
			Name:                     "test",
			Timeout:                  time.Second,
			ErrorThresholdPercentage: 50,
			ResetTimeout:             100 * time.Millisecond,
			VolumeThreshold:          2,
			HalfOpenMaxRequests:      1,
		}
	})

	JustBeforeEach(func() {
		cb = circuitbreaker.New[int, string](settings, nil)
	})

	Describe("Initialize", func() {
		It("should reject Fire before an action is registered", func() {
			_, err := cb.Fire(context.Background(), 1)
			Expect(err).To(MatchError(circuitbreaker.ErrNotInitialized))
		})

		It("should accept exactly one action", func() {
			Expect(cb.Initialize(action)).To(Succeed())
			Expect(cb.Initialize(action)).To(MatchError(circuitbreaker.ErrAlreadyInitialized))
		})

		It("should reject a nil action", func() {
			Expect(cb.Initialize(nil)).NotTo(Succeed())
		})
	})

	Context("when CLOSED", func() {
		JustBeforeEach(func() {
			Expect(cb.Initialize(action)).To(Succeed())
		})

		It("should pass results through", func() {
			out, err := cb.Fire(context.Background(), 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("value"))
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should stay closed below the volume threshold", func() {
			failNext.Store(true)
			_, err := cb.Fire(context.Background(), 1)
			Expect(err).To(MatchError(errBackend))
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should stay closed while the failure rate is under the threshold", func() {
			settings.ErrorThresholdPercentage = 75
			cb = circuitbreaker.New[int, string](settings, nil)
			Expect(cb.Initialize(action)).To(Succeed())

			_, _ = cb.Fire(context.Background(), 1)
			failNext.Store(true)
			_, _ = cb.Fire(context.Background(), 1)
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should reset its counts every window", func() {
			settings.RollingWindow = 50 * time.Millisecond
			cb = circuitbreaker.New[int, string](settings, nil)
			Expect(cb.Initialize(action)).To(Succeed())

			failNext.Store(true)
			_, _ = cb.Fire(context.Background(), 1)
			time.Sleep(80 * time.Millisecond)
			_, _ = cb.Fire(context.Background(), 1)
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))

			_, _ = cb.Fire(context.Background(), 1)
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should open once the failure rate reaches the threshold", func() {
			failNext.Store(true)
			_, _ = cb.Fire(context.Background(), 1)
			_, _ = cb.Fire(context.Background(), 1)
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})
	})

	Context("when OPEN", func() {
		JustBeforeEach(func() {
			Expect(cb.Initialize(action)).To(Succeed())
			failNext.Store(true)
			_, _ = cb.Fire(context.Background(), 1)
			_, _ = cb.Fire(context.Background(), 1)
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should fail fast without invoking the action", func() {
			before := calls.Load()
			_, err := cb.Fire(context.Background(), 1)
			Expect(err).To(MatchError(circuitbreaker.ErrOpen))
			Expect(calls.Load()).To(Equal(before))
		})

		It("should hand the rejection to the fallback", func() {
			var cause error
			cb.SetFallback(func(_ context.Context, _ int, err error) (string, error) {
				cause = err
				return "fallback", nil
			})
			out, err := cb.Fire(context.Background(), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("fallback"))
			Expect(cause).To(MatchError(circuitbreaker.ErrOpen))
		})

		It("should move to HALF-OPEN after the reset timeout", func() {
			Eventually(cb.State, time.Second, 10*time.Millisecond).Should(Equal(circuitbreaker.StateHalfOpen))
		})
	})

	Context("when HALF-OPEN", func() {
		JustBeforeEach(func() {
			Expect(cb.Initialize(action)).To(Succeed())
			failNext.Store(true)
			_, _ = cb.Fire(context.Background(), 1)
			_, _ = cb.Fire(context.Background(), 1)
			Eventually(cb.State, time.Second, 10*time.Millisecond).Should(Equal(circuitbreaker.StateHalfOpen))
		})

		It("should close after a successful trial call", func() {
			failNext.Store(false)
			out, err := cb.Fire(context.Background(), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("value"))
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should reopen after a failed trial call", func() {
			_, err := cb.Fire(context.Background(), 1)
			Expect(err).To(MatchError(errBackend))
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should not close when the trial caller cancels mid-flight", func() {
			hangNext.Store(true)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				time.Sleep(10 * time.Millisecond)
				cancel()
			}()

			_, err := cb.Fire(ctx, 1)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(cb.State()).NotTo(Equal(circuitbreaker.StateClosed))
		})

		It("should not admit a trial whose caller already cancelled", func() {
			before := calls.Load()
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := cb.Fire(ctx, 1)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(calls.Load()).To(Equal(before))
			Expect(cb.State()).To(Equal(circuitbreaker.StateHalfOpen))

			failNext.Store(false)
			_, err = cb.Fire(context.Background(), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})
	})

	Describe("timeouts", func() {
		BeforeEach(func() {
			settings.Timeout = 20 * time.Millisecond
			settings.VolumeThreshold = 1
		})

		It("should abandon slow actions and count them as failures", func() {
			slow := func(ctx context.Context, _ int) (string, error) {
				select {
				case <-time.After(500 * time.Millisecond):
					return "late", nil
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
			Expect(cb.Initialize(slow)).To(Succeed())

			_, err := cb.Fire(context.Background(), 1)
			Expect(err).To(MatchError(circuitbreaker.ErrTimeout))
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should not count caller cancellation as a failure", func() {
			blocking := func(ctx context.Context, _ int) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}
			Expect(cb.Initialize(blocking)).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := cb.Fire(ctx, 1)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})
	})

	Describe("fallback on failure", func() {
		It("should receive the action error", func() {
			Expect(cb.Initialize(action)).To(Succeed())
			failNext.Store(true)
			cb.SetFallback(func(_ context.Context, in int, cause error) (string, error) {
				return "", errors.Join(errors.New("wrapped"), cause)
			})
			_, err := cb.Fire(context.Background(), 3)
			Expect(errors.Is(err, errBackend)).To(BeTrue())
		})
	})

	Describe("State.String", func() {
		It("should return readable names", func() {
			Expect(circuitbreaker.StateClosed.String()).To(Equal("closed"))
			Expect(circuitbreaker.StateOpen.String()).To(Equal("open"))
			Expect(circuitbreaker.StateHalfOpen.String()).To(Equal("half-open"))
		})
	})
})
