/*
Package resilience provides the circuit breaker guarding backend calls.

# Overview

When the FileFlex backend is down every listing fetch would otherwise wait
out its retries and timeout. The breaker counts consecutive transport
failures and, past a threshold, fails calls immediately until a cooldown
has elapsed. Backend business errors (a rejected operation, an expired
token) are successes from the breaker's point of view.

# Usage

	breaker, err := resilience.New("fileflex", 5, 30*time.Second)
	if err != nil {
		return err
	}

	if err := breaker.Allow(); err != nil {
		return err
	}
	resp, err := call()
	breaker.Record(err != nil)

# States

	Closed --[threshold failures]-> Open --[cooldown]-> Half-Open --[probe ok]-> Closed
	                                                        |
	                                                  [probe failed]
	                                                        v
	                                                       Open
*/
package resilience
