// Package secrets encrypts individual configuration values.
//
// # Encryption Scheme
//
// Each project that enables encryption gets one X25519 key pair:
//
//  1. The public key and a key id are stored in the document's [encryption]
//     table, so anyone can add encrypted values.
//  2. The private key is stored outside the document, in .stand.keys with
//     0600 permissions, or supplied through STAND_PRIVATE_KEY.
//  3. Each value is sealed with NaCl box using a one-time sender key and a
//     random 24-byte nonce. The envelope records the key id, the sender's
//     public key and the nonce.
//
// Sealing the same value twice gives different ciphertext.
//
// # Key Handling
//
// Private key bytes are held in a memguard enclave and only decrypted into
// locked memory for the duration of a single Open. A Vault loads the key the
// first time a value must be decrypted, never before.
//
// # Security Considerations
//
// Decryption failures return kerrors.ErrDecryptionFailed without any part of
// the value. A key file readable by group or others is reported through
// KeySource.Warn but still used.
package secrets
