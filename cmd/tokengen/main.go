// Command tokengen mints an HS256 API token for a server running with the
// matching secret key. Tokens are distributed out of band; the API itself
// has no credential store.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Renkon/StoreAPI/internal/server/auth"
)

func main() {
	secret := flag.String("s", "", "secret key the server was started with")
	name := flag.String("n", "api-client", "token holder name, shows up in request logs")
	ttl := flag.Duration("t", 24*time.Hour, "token validity")
	flag.Parse()

	if *secret == "" {
		log.Fatal("secret key is required (-s)")
	}

	token, err := auth.GenerateToken(*name, []byte(*secret), *ttl)
	if err != nil {
		log.Fatalf("token generation error: %v", err)
	}

	fmt.Println(token)
}
