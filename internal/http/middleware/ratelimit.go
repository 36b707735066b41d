package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	"golang.org/x/time/rate"
)

const (
	// rateLimit is the number of requests per second
	rateLimit = 5
	// burst is the maximum number of requests that can be made in a single burst
	burst = 10
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func RateLimit() gin.HandlerFunc {
	var mu sync.Mutex
	var clients = make(map[string]*client)

	// Background routine to remove expired clients
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > time.Minute*3 {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		mu.Lock()

		ip := c.ClientIP()
		if _, ok := clients[ip]; !ok {
			clients[ip] = &client{
				limiter: rate.NewLimiter(rateLimit, burst),
			}
		}
		clients[ip].lastSeen = time.Now()

		if !clients[ip].limiter.Allow() {
			mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"type":    "error",
				"message": "Rate limit exceeded",
			})
			return
		}

		mu.Unlock()
		c.Next()
	}
}

// LoginRateLimit throttles credential guessing on the login route.
func LoginRateLimit() gin.HandlerFunc {
	loginRate, err := limiter.NewRateFromFormatted("10-M")
	if err != nil {
		panic(err)
	}

	store := memory.NewStore()
	instance := limiter.New(store, loginRate)

	return func(c *gin.Context) {
		ctx, err := instance.Get(c, c.ClientIP())

		if err != nil {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"type":    "error",
				"message": "internal server error",
			})
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", ctx.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", ctx.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", ctx.Reset))

		if ctx.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"type":    "error",
				"message": "Too many login attempts. Try again later.",
			})
			return
		}

		c.Next()
	}
}
