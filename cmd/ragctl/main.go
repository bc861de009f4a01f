// Command ragctl manages the knowledge base from the command line: ingesting
// documents, backfilling embeddings, and querying the corpus.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
