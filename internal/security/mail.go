package security

import (
	"fmt"
	"time"
)

func resetMailBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(`
      <div style="font-family:sans-serif;">
        <h2>SecureVault Method Reset</h2>
        <p>Your reset code is:</p>
        <div style="font-size:24px; font-weight:bold; color:#2c3e50;">%s</div>
        <p>This code expires in %d minutes. Do not share it.</p>
      </div>`, code, int(ttl.Minutes()))
}
