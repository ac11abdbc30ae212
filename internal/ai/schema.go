package ai

// intentSchemaDescription tells the model how to encode a swap request.
//
// Keeping the symbol list in sync with the registry's token catalog.
const intentSchemaDescription = `
Respond with a single JSON object, no prose, matching:

{
  "input_symbol":  string,  // symbol of the token being sold
  "output_symbol": string,  // symbol of the token being bought
  "amount":        string   // human-readable decimal amount of input_symbol, e.g. "1.5"
}

Known symbols: APT, USDC, USDT.

Notes:
  - "swap 2 APT for USDC" means input_symbol=APT, output_symbol=USDC, amount="2".
  - If the question names a token not in the list, or is not a swap request,
    respond with {"error": "<short reason>"} instead.
`
